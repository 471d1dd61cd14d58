/*
 * Copyright 2023 Netfork Authors
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
 */

package bytesconv

import "errors"

var (
	errEmptyInt               = errors.New("empty integer")
	errUnexpectedFirstChar    = errors.New("unexpected first char found. Expecting 0-9")
	errUnexpectedTrailingChar = errors.New("unexpected trailing char found. Expecting 0-9")
	errTooLongInt             = errors.New("too long int")
	errEmptyHexNum            = errors.New("empty hex number")
	errTooLargeHexNum         = errors.New("too large hex number")
)

// hex2intTable maps a byte to its hex digit value, or 16 for non-hex bytes.
var hex2intTable = func() [256]byte {
	var t [256]byte
	for i := 0; i < 256; i++ {
		c := byte(16)
		switch {
		case i >= '0' && i <= '9':
			c = byte(i) - '0'
		case i >= 'a' && i <= 'f':
			c = byte(i) - 'a' + 10
		case i >= 'A' && i <= 'F':
			c = byte(i) - 'A' + 10
		}
		t[i] = c
	}
	return t
}()

// ToLowerTable maps ASCII upper case letters to their lower case variant.
var ToLowerTable = func() [256]byte {
	var t [256]byte
	for i := 0; i < 256; i++ {
		c := byte(i)
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		t[i] = c
	}
	return t
}()

// ToUpperTable maps ASCII lower case letters to their upper case variant.
var ToUpperTable = func() [256]byte {
	var t [256]byte
	for i := 0; i < 256; i++ {
		c := byte(i)
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		t[i] = c
	}
	return t
}()
