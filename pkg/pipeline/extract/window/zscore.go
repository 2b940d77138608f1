/*
 * Copyright (C) 2023 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package window

// ZScore returns (value - mean) / max(std, epsilon). The epsilon floor keeps
// the score finite when a window has zero variance, which is the normal state
// of a flat baseline.
func ZScore(value, mean, std, epsilon float64) float64 {
	if std < epsilon {
		std = epsilon
	}
	return (value - mean) / std
}
