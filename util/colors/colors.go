// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package colors

var (
	Red   = "\033[31;1m"
	Clear = "\033[0;0m"
)
