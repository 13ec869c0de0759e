/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"naive.systems/safeprofile/atomic"
	"naive.systems/safeprofile/cruleslib/basic"
	"naive.systems/safeprofile/cruleslib/stats"
)

// Names of the files in an evidence directory.
const (
	EvidenceSarif = "results.sarif"
	EvidenceJSON  = "results.json"
	EvidenceHTML  = "report.html"
	EvidenceText  = "report.txt"
)

// WriteEvidence fills dir with every report of the run plus stats.json and
// packs the directory into <dir>.tar.gz next to it. The archive path is
// returned.
func WriteEvidence(dir string, r *Run, opts TextOptions) (string, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create evidence directory: %w", err)
	}
	if err := WriteSarif(filepath.Join(dir, EvidenceSarif), r); err != nil {
		return "", err
	}
	if err := WriteJSON(filepath.Join(dir, EvidenceJSON), r); err != nil {
		return "", err
	}
	if err := WriteHTML(filepath.Join(dir, EvidenceHTML), r); err != nil {
		return "", err
	}
	var text bytes.Buffer
	WriteText(&text, r, message.NewPrinter(language.English), opts)
	if err := atomic.Write(filepath.Join(dir, EvidenceText), text.Bytes()); err != nil {
		return "", fmt.Errorf("error writing text report: %w", err)
	}
	if r.Summary != nil {
		if err := stats.Write(dir, r.Summary); err != nil {
			return "", err
		}
	}
	archive := dir + ".tar.gz"
	if err := basic.TarDirectory(dir, archive); err != nil {
		return "", err
	}
	return archive, nil
}
