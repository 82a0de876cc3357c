// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package log

import (
	"fmt"
	"io"
	"sync"
)

// Singleton trace log writer. Does not add prefixes, or force newlines.
// Defaults to discarding output so the library stays quiet; callers that
// want selection traces point it at a real writer.

var mutex  sync.Mutex
var writer io.Writer = io.Discard

// Directs all subsequent log output to the given writer. Pass nil to discard.
func SetWriter(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	if w==nil { w=io.Discard }
	writer=w
}

func Printf(format string, args ...interface{}) (n int, err error) {
	mutex.Lock()
	defer mutex.Unlock()
	return fmt.Fprintf(writer, format, args...)
}

func Println(args ...interface{}) (n int, err error) {
	mutex.Lock()
	defer mutex.Unlock()
	return fmt.Fprintln(writer, args...)
}
