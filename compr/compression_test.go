// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package compr

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestDecodeZstdRoundTrip(t *testing.T) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		t.Fatal(err)
	}
	ctl := bytes.Repeat([]byte("foo"), 1000)
	compressed := enc.EncodeAll(ctl, nil)

	got, err := DecodeZstd(compressed, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, ctl) {
		t.Fatal("decoded output does not match original")
	}
}

func TestDecodeZstdAppendsToDst(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	ctl := []byte("hello compressed world")
	compressed := enc.EncodeAll(ctl, nil)

	prefix := []byte("prefix:")
	got, err := DecodeZstd(compressed, append([]byte(nil), prefix...))
	if err != nil {
		t.Fatal(err)
	}
	want := append(append([]byte(nil), prefix...), ctl...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}
