/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements design persistence and the recent-designs index.
// Designs are single JSON files written transactionally, with timestamped
// backups kept in a backups folder next to the file. Every document is
// validated against an embedded JSON schema on open and save.
// The SQLite index at <dataDir>/index.sqlite remembers recently saved
// designs and their exports; it is derived data and safe to delete.
package storage
