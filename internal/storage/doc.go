/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists the planner document.
// The document is the whole application state wrapped in a versioned envelope and is stored
// under a namespace key, either as a pretty-printed JSON file with timestamped backups or as a
// row in an embedded SQLite database that also keeps a bounded revision log.
// Every loaded document is validated against an embedded JSON schema before it is decoded.
package storage
