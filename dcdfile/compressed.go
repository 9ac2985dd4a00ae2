/*
 * compressed.go, part of godcd
 *
 * Copyright 2021 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package dcdfile

import (
	"bufio"
	"bytes"
	"compress/lzw"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

//Compression formats, named after the file extension that selects them.
const (
	Plain = "dcd"
	Gzip  = "gz"
	Zstd  = "zst"
	LZW   = "lzw"
)

//compression deduces the compression format from the file extension.
//Unknown extensions are assumed to be plain DCD files, with a heads-up in the log.
func compression(fname string) string {
	fk := strings.ToLower(strings.TrimPrefix(filepath.Ext(fname), "."))
	switch fk {
	case Plain, Gzip, Zstd, LZW:
		return fk
	case "zstd":
		return Zstd
	}
	log.Printf("Format string %s not supported. %s will be assumed to be a plain DCD file", fk, fname)
	return Plain
}

//WB is an in-memory writing buffer that can seek back, as DCD requires the
//number of frames at the beginning. Compressed DCDs are assembled here and
//compressed at once when closed.
type WB struct {
	buf []byte
	off int64
}

//Write writes w to the buffer at the current offset, growing it if needed.
func (B *WB) Write(w []byte) (int, error) {
	end := B.off + int64(len(w))
	if end > int64(len(B.buf)) {
		if end > int64(cap(B.buf)) {
			nb := make([]byte, end, 2*end)
			copy(nb, B.buf)
			B.buf = nb
		} else {
			B.buf = B.buf[:end]
		}
	}
	copy(B.buf[B.off:], w)
	B.off = end
	return len(w), nil
}

//Seek implements io.Seeker.
func (B *WB) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = B.off + offset
	case io.SeekEnd:
		abs = int64(len(B.buf)) + offset
	default:
		return 0, newError("invalid whence", "", "WB.Seek", nil)
	}
	if abs < 0 {
		return 0, newError("negative position", "", "WB.Seek", nil)
	}
	B.off = abs
	return abs, nil
}

//Bytes returns the contents of the buffer.
func (B *WB) Bytes() []byte {
	return B.buf
}

//Also, why couldn't *zstd.Decoder implement io.ReadCloser? :-(
type zstdql struct {
	*zstd.Decoder
}

//Close releases the decoder. It can not be used after this call.
func (z zstdql) Close() error {
	z.Decoder.Close()
	return nil
}

//prepSource opens fname and returns a seekable source for its DCD contents
//and the size of those contents. Compressed files are decompressed in memory
//so random access keeps working.
func prepSource(fname string) (*os.File, io.ReadSeeker, int64, error) {
	fh, err := os.Open(fname)
	if err != nil {
		return nil, nil, 0, newError(UnableToOpen, fname, "prepSource", err)
	}
	format := compression(fname)
	if format == Plain {
		st, err := fh.Stat()
		if err != nil {
			fh.Close()
			return nil, nil, 0, newError(err.Error(), fname, "prepSource", err)
		}
		return fh, fh, st.Size(), nil
	}
	defer fh.Close()
	reader := bufio.NewReader(fh)
	var dec io.ReadCloser
	switch format {
	case Gzip:
		dec, err = gzip.NewReader(reader)
	case Zstd:
		var z *zstd.Decoder
		z, err = zstd.NewReader(reader)
		if err == nil {
			dec = zstdql{z}
		}
	case LZW:
		dec = lzw.NewReader(reader, lzwOrder, lzwLitwidth)
	}
	if err != nil {
		return nil, nil, 0, newError("Can't start decompression", fname, "prepSource", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, nil, 0, newError("Can't decompress", fname, "prepSource", err)
	}
	return nil, bytes.NewReader(data), int64(len(data)), nil
}

//compress writes data into target, compressed with format.
func compress(target io.Writer, format string, data []byte) error {
	var w io.WriteCloser
	var err error
	switch format {
	case Gzip:
		w = gzip.NewWriter(target)
	case Zstd:
		w, err = zstd.NewWriter(target, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case LZW:
		w = lzw.NewWriter(target, lzwOrder, lzwLitwidth)
	default:
		_, err = target.Write(data)
		return err
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
