package openai

// describePrompt drives the comprehensive image analysis pass. Its output
// becomes the chunk content, so it asks for everything a literal-text or
// semantic search might need to match on.
const describePrompt = `Describe this image comprehensively and in detail.
Include: the overall scene and setting, every distinct object and person,
any text that appears in the image transcribed verbatim, colors, spatial
layout, and anything notable or unusual. Write flowing prose, not a list.`

// conceptsPrompt drives the concept-focused pass. Its output becomes the
// chunk context used for multimodal embedding, so it favors short,
// high-signal phrasing over completeness.
const conceptsPrompt = `List the key concepts in this image as a single
concise line optimized for search: main subjects, actions, setting, and any
prominent text. No filler words, no full sentences.`
