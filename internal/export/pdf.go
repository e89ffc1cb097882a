/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders operator artifacts from the portfolio. The PDF is
// a contact sheet: one section per project, its items listed with name,
// media kind and source URL.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"sitecanvas/internal/domain"
)

// PDFOptions controls the contact sheet.
type PDFOptions struct {
	Title       string // document title; defaults to "Portfolio"
	IncludeURLs bool
}

// ExportPortfolioPDF writes a contact-sheet PDF of the given projects.
// Built-in Helvetica keeps text vector without font embedding.
func ExportPortfolioPDF(projects []domain.Project, outPath string, opt PDFOptions) error {
	title := opt.Title
	if title == "" {
		title = "Portfolio"
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("sitecanvas", false)
	pdf.SetMargins(48, 56, 48)
	pdf.SetAutoPageBreak(true, 56)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 28, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 14, fmt.Sprintf("%d project(s)", len(projects)), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	for _, p := range projects {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 14)
		heading := p.Title
		if heading == "" {
			heading = p.ID
		}
		pdf.CellFormat(0, 20, heading, "", 1, "L", false, 0, "")

		if p.Description != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(80, 80, 80)
			pdf.MultiCell(0, 13, p.Description, "", "L", false)
		}

		if len(p.Items) == 0 {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(140, 140, 140)
			pdf.CellFormat(0, 14, "no items", "", 1, "L", false, 0, "")
		}
		for i, it := range p.Items {
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "", 10)
			name := it.Name
			if name == "" {
				name = it.ID
			}
			line := fmt.Sprintf("%2d. [%s] %s", i+1, it.Type, name)
			if it.Title != "" {
				line += " — " + it.Title
			}
			pdf.CellFormat(0, 14, line, "", 1, "L", false, 0, "")
			if opt.IncludeURLs && it.URL != "" {
				pdf.SetFont("Helvetica", "", 8)
				pdf.SetTextColor(60, 60, 160)
				pdf.CellFormat(0, 11, "    "+it.URL, "", 1, "L", false, 0, "")
			}
			if it.Highlight != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetTextColor(100, 100, 100)
				pdf.MultiCell(0, 12, "    "+it.Highlight, "", "L", false)
			}
		}
		pdf.Ln(12)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
