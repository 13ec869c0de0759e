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

package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/profile"
)

var languageMap = map[string]language.Tag{"en": language.English, "zh": language.Chinese}

// Languages lists the accepted --lang values.
func Languages() []string {
	return []string{"en", "zh"}
}

func Supported(lang string) bool {
	_, ok := languageMap[lang]
	return ok
}

// GetPrinter returns a printer for lang, falling back to English.
func GetPrinter(lang string) *message.Printer {
	langTag, exist := languageMap[lang]
	if !exist {
		langTag = languageMap["en"]
	}
	return message.NewPrinter(langTag)
}

// Finding messages are a rule description followed by detail sentences.
// Both halves are translated separately so the detail keeps its arguments.
func descriptions() []string {
	rules, err := profile.Load(profile.CoreSafety)
	if err != nil {
		return nil
	}
	var out []string
	for _, r := range rules {
		out = append(out, r.Description)
	}
	return out
}

// LocalizeRules translates rule titles and descriptions for lang.
func LocalizeRules(rules []profile.Rule, lang string) []profile.Rule {
	p := GetPrinter(lang)
	out := make([]profile.Rule, len(rules))
	for i, r := range rules {
		r.Title = p.Sprintf(r.Title)
		r.Description = p.Sprintf(r.Description)
		out[i] = r
	}
	return out
}

// LocalizeFindings returns a copy of results with messages translated for
// lang. The input is never modified.
func LocalizeFindings(results []findings.Finding, lang string) []findings.Finding {
	out := make([]findings.Finding, len(results))
	copy(out, results)
	if lang == "" || lang == "en" || !Supported(lang) {
		return out
	}
	p := GetPrinter(lang)
	for i := range out {
		out[i].Message = localizeMessage(out[i].Message, p)
	}
	return out
}

func localizeMessage(msg string, p *message.Printer) string {
	for _, d := range descriptions() {
		if !strings.HasPrefix(msg, d) {
			continue
		}
		detail := strings.TrimPrefix(msg, d)
		return p.Sprintf(d) + localizeDetail(detail, p)
	}
	return msg
}

func localizeDetail(detail string, p *message.Printer) string {
	switch {
	case detail == "":
		return ""
	case detail == " (array form)":
		return p.Sprintf(" (array form)")
	case strings.HasPrefix(detail, " Consider "):
		shape := strings.TrimSuffix(strings.TrimPrefix(detail, " Consider "), ".")
		return p.Sprintf(" Consider %s.", shape)
	case strings.HasPrefix(detail, " Casting from '"):
		parts := strings.SplitN(strings.TrimSuffix(strings.TrimPrefix(detail, " Casting from '"), "'."), "' to '", 2)
		if len(parts) == 2 {
			return p.Sprintf(" Casting from '%s' to '%s'.", parts[0], parts[1])
		}
	case strings.HasPrefix(detail, " Variable '"):
		name := strings.TrimPrefix(detail, " Variable '")
		if end := strings.Index(name, "'"); end >= 0 {
			return p.Sprintf(" Variable '%s' has automatic storage duration and is destroyed when the function returns.", name[:end])
		}
	}
	return detail
}
