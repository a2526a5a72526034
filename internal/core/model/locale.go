// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a BCP 47 tag in `ll-RR` form, e.g. `it-IT`.
type Locale string

const (
	// DefaultLocale is used when a request carries no locale or one outside
	// SupportedLocales.
	DefaultLocale Locale = "it-IT"
	// DefaultFallbackLocale is the locale of the last fallback step.
	DefaultFallbackLocale Locale = "en-US"
)

// LocaleInfo pairs a supported locale with its display name.
type LocaleInfo struct {
	Code Locale `json:"code"`
	Name string `json:"name"`
}

// SupportedLocales is the ordered set of locales a caller may request.
var SupportedLocales = []LocaleInfo{
	{Code: "en-US", Name: "English (US)"},
	{Code: "es-MX", Name: "Español (Latinoamérica)"},
	{Code: "pt-BR", Name: "Português (Brasil)"},
	{Code: "de-DE", Name: "Deutsch"},
	{Code: "fr-FR", Name: "Français"},
	{Code: "es-ES", Name: "Español (España)"},
	{Code: "it-IT", Name: "Italiano"},
	{Code: "ru-RU", Name: "Русский"},
	{Code: "ja-JP", Name: "日本語"},
	{Code: "hi-IN", Name: "हिन्दी"},
	{Code: "tr-TR", Name: "Türkçe"},
}

// LocaleCodes returns the supported locale codes in declaration order.
func LocaleCodes() []string {
	out := make([]string, 0, len(SupportedLocales))
	for _, l := range SupportedLocales {
		out = append(out, string(l.Code))
	}
	return out
}

// IsSupported reports whether the locale is a member of SupportedLocales
// after canonicalisation.
func IsSupported(in string) bool {
	_, ok := canonicalLocale(in)
	return ok
}

// NormalizeLocale canonicalises a caller supplied locale. Casing is ignored and
// `_` is accepted as separator, so `IT_it` resolves to `it-IT`. Empty,
// unparsable or unsupported values resolve to def.
func NormalizeLocale(in string, def Locale) Locale {
	if l, ok := canonicalLocale(in); ok {
		return l
	}
	return def
}

func canonicalLocale(in string) (Locale, bool) {
	in = strings.ReplaceAll(strings.TrimSpace(in), "_", "-")
	if in == "" {
		return "", false
	}
	tag, err := language.Parse(in)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf != language.Exact {
		return "", false
	}
	candidate := Locale(base.String() + "-" + region.String())
	for _, l := range SupportedLocales {
		if l.Code == candidate {
			return candidate, true
		}
	}
	return "", false
}

// Language is the ISO 639-1 part of the locale, e.g. `it` for `it-IT`.
func (l Locale) Language() string {
	lang, _, _ := strings.Cut(string(l), "-")
	return strings.ToLower(lang)
}

// Region is the ISO 3166-1 part of the locale, e.g. `IT` for `it-IT`.
func (l Locale) Region() string {
	_, region, _ := strings.Cut(string(l), "-")
	return strings.ToUpper(region)
}

func (l Locale) String() string {
	return string(l)
}
