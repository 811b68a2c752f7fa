/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"errors"
	"fmt"
)

// ErrCategoryInUse is reported when a category still classifies catalog items.
var ErrCategoryInUse = errors.New("category in use")

// CategoryInUseError names the category and the first catalog item blocking
// its deletion. It matches ErrCategoryInUse via errors.Is.
type CategoryInUseError struct {
	CategoryID string
	ItemID     string
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %q still referenced by catalog item %q", e.CategoryID, e.ItemID)
}

func (e *CategoryInUseError) Is(target error) bool { return target == ErrCategoryInUse }
