/*
 * Copyright (C) 2022 IBM, Inc.
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

package utils

import (
	"fmt"
	"strconv"
)

// ErrNonNumeric marks a scoring input whose type breaks the numeric contract
// of the detection stages. It is counted separately from data-quality errors.
type ErrNonNumeric struct {
	Value interface{}
}

func (e *ErrNonNumeric) Error() string {
	return fmt.Sprintf("value %v (%T) is not numeric", e.Value, e.Value)
}

// ConvertToFloat64 returns the float64 of any numeric input.
// Non-numeric types (including strings) yield ErrNonNumeric.
func ConvertToFloat64(v interface{}) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int8:
		return float64(value), nil
	case int16:
		return float64(value), nil
	case int32:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case uint:
		return float64(value), nil
	case uint8:
		return float64(value), nil
	case uint16:
		return float64(value), nil
	case uint32:
		return float64(value), nil
	case uint64:
		return float64(value), nil
	default:
		return 0, &ErrNonNumeric{Value: v}
	}
}

// ParseFloat64 accepts numeric types and numeric strings. Unparsable strings
// are a data-quality error, reported as a plain error rather than ErrNonNumeric.
func ParseFloat64(v interface{}) (float64, error) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as a float: %w", s, err)
		}
		return f, nil
	}
	return ConvertToFloat64(v)
}

// ConvertToInt64 returns the int64 of any numeric input.
func ConvertToInt64(v interface{}) (int64, error) {
	switch value := v.(type) {
	case int64:
		return value, nil
	case int:
		return int64(value), nil
	case int32:
		return int64(value), nil
	case uint64:
		return int64(value), nil
	case uint32:
		return int64(value), nil
	case float64:
		return int64(value), nil
	default:
		return 0, &ErrNonNumeric{Value: v}
	}
}
