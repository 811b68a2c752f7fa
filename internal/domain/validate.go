/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports the first invalid field of a rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// Validate checks a catalog item definition. categoryExists resolves the
// category reference; a dangling reference is rejected, never repaired.
func (c CatalogItem) Validate(categoryExists func(id string) bool) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(c.CategoryID) == "" {
		return invalid("categoryId", "is required")
	}
	if categoryExists != nil && !categoryExists(c.CategoryID) {
		return invalid("categoryId", fmt.Sprintf("category %q does not exist", c.CategoryID))
	}
	if !(c.WidthM > 0) {
		return invalid("widthM", "must be greater than zero")
	}
	if !(c.DepthM > 0) {
		return invalid("depthM", "must be greater than zero")
	}
	if c.Price < 0 {
		return invalid("price", "must not be negative")
	}
	return nil
}

// Validate checks the numeric constraints of a location.
func (l LocationProject) Validate() error {
	if l.Budget < 0 {
		return invalid("budget", "must not be negative")
	}
	return l.FloorPlan.Validate()
}

func (f FloorPlan) Validate() error {
	if !(f.Width > 0) {
		return invalid("floorPlan.width", "must be greater than zero")
	}
	if !(f.Depth > 0) {
		return invalid("floorPlan.depth", "must be greater than zero")
	}
	return nil
}

// ValidRotation reports whether r is one of the four supported quarter turns.
func ValidRotation(r int) bool {
	switch r {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// Validate checks the placement itself; the catalog reference may dangle.
func (p PlacedItem) Validate() error {
	if !ValidRotation(p.Rotation) {
		return invalid("rotation", fmt.Sprintf("%d is not one of 0, 90, 180, 270", p.Rotation))
	}
	return nil
}
