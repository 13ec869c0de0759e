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

// Clang diagnostics log

// With CC_LOG_DIAGNOSTICS=1 and CC_LOG_DIAGNOSTICS_FILE=<path>, clang appends
// a plist-style dictionary per compiler invocation:
//
// 	<dict>
// 	  <key>main-file</key>
// 	  <string>/src/a.cpp</string>
// 	  <key>diagnostics</key>
// 	  <array>
// 	    <dict>
// 	      <key>level</key><string>error</string>
// 	      <key>filename</key><string>/src/a.cpp</string>
// 	      <key>line</key><integer>3</integer>
// 	      ...

package clangast

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

type diagnosticKV struct {
	Keys   []string `xml:"key"`
	Values []string `xml:",any"`
}

type collectionKV struct {
	MainFileValue string
	Diagnostics   []diagnosticKV
}

// UnmarshalXML walks the top-level dictionary in document order, pairing
// each <key> with the element that follows it.
func (c *collectionKV) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var key string
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if t.Name.Local == "key" {
				if err := d.DecodeElement(&key, &t); err != nil {
					return err
				}
				continue
			}
			switch {
			case key == "main-file" && t.Name.Local == "string":
				if err := d.DecodeElement(&c.MainFileValue, &t); err != nil {
					return err
				}
			case key == "diagnostics" && t.Name.Local == "array":
				var list struct {
					Dicts []diagnosticKV `xml:"dict"`
				}
				if err := d.DecodeElement(&list, &t); err != nil {
					return err
				}
				c.Diagnostics = append(c.Diagnostics, list.Dicts...)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
			key = ""
		}
	}
}

type Diagnostic struct {
	Level         string
	MainFilename  string
	Filename      string
	Line          int
	Column        int
	Message       string
	ID            int
	WarningOption string
}

// IsError reports whether the diagnostic stops a successful parse.
func (d Diagnostic) IsError() bool {
	return d.Level == "error" || d.Level == "fatal error"
}

func (d Diagnostic) String() string {
	if d.Filename == "" {
		return d.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.Filename, d.Line, d.Column, d.Message)
}

// ParseDiagnostics decodes the first dictionary of a diagnostics log.
func ParseDiagnostics(blob []byte) ([]Diagnostic, error) {
	var collection collectionKV
	if err := xml.Unmarshal(blob, &collection); err != nil {
		return nil, err
	}
	var diagnostics []Diagnostic
	for _, kv := range collection.Diagnostics {
		diagnostic := Diagnostic{MainFilename: collection.MainFileValue}
		for j := 0; j < len(kv.Keys) && j < len(kv.Values); j++ {
			value := kv.Values[j]
			switch kv.Keys[j] {
			case "level":
				diagnostic.Level = value
			case "filename":
				diagnostic.Filename = value
			case "line":
				diagnostic.Line, _ = strconv.Atoi(value)
			case "column":
				diagnostic.Column, _ = strconv.Atoi(value)
			case "message":
				diagnostic.Message = value
			case "ID":
				diagnostic.ID, _ = strconv.Atoi(value)
			case "WarningOption":
				diagnostic.WarningOption = value
			}
		}
		diagnostics = append(diagnostics, diagnostic)
	}
	return diagnostics, nil
}

// FirstError returns the first error-level diagnostic.
func FirstError(diagnostics []Diagnostic) (Diagnostic, bool) {
	for _, d := range diagnostics {
		if d.IsError() {
			return d, true
		}
	}
	return Diagnostic{}, false
}
