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
	"bufio"
	"fmt"
	"os"
	"strings"

	"naive.systems/safeprofile/cruleslib/basic"
)

// GetCode returns the lines around lineNumber, two on each side, prefixed
// with their numbers. The reported line is marked with '>'.
func GetCode(path string, lineNumber int, charset string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lower := lineNumber - 2
	upper := lineNumber + 2
	lineCount := 0
	var output strings.Builder
	for scanner.Scan() {
		lineCount++
		if lineCount < lower {
			continue
		} else if lineCount > upper {
			break
		}
		text := basic.ConvertCharset(scanner.Bytes(), charset)
		if lineCount == lineNumber {
			fmt.Fprintf(&output, "> %d| %s\n", lineCount, text)
		} else {
			fmt.Fprintf(&output, "%d| %s\n", lineCount, text)
		}
	}
	if err = scanner.Err(); err != nil {
		return "", err
	}
	return output.String(), nil
}
