/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"branchplanner/internal/bom"
)

// utf8BOM makes spreadsheet applications detect the encoding.
const utf8BOM = "\uFEFF"

// CSVHeader is the column order of WriteCSV.
var CSVHeader = []string{"SKU", "Name", "Category", "Unit Price", "Quantity", "Subtotal"}

// WriteCSV writes one line per BOM row after a UTF-8 byte order mark and a
// header line.
func WriteCSV(w io.Writer, rows []bom.Row) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.SKU, r.Name, r.Category, r.UnitPrice.String(), strconv.Itoa(r.Quantity), r.Subtotal.String()}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.SKU, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
