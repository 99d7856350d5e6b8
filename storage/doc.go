// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage defines the persistence interfaces for documents and
// chunks, independent of any backend.
//
// The concrete implementation lives in storage/postgres, backed by a
// relational store with vector-similarity column support. Connections come
// from a bounded pool and are only ever reachable through scoped
// acquisition, so release is guaranteed on every exit path.
package storage
