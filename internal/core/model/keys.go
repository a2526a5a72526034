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

// Well-known keys under which the resolution workflow shares state through
// its cor.Context.
const (
	RequestKey       = "__RESOLUTION_REQUEST__"
	ReferenceKey     = "__CONTENT_REFERENCE__"
	LocaleKey        = "__EFFECTIVE_LOCALE__"
	TitleKey         = "__PROVIDER_TITLE__"
	TitleResolvedKey = "__PROVIDER_TITLE_RESOLVED__"
	StreamKey        = "__TRAILER_STREAM__"
	StepKey          = "__SERVING_STEP__"
)
