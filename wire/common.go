// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/scnode/scnode/chainhash"
)

// MessageError describes an issue with a message.
type MessageError struct {
	Func        string
	Description string
}

func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}

func messageError(f, desc string) *MessageError {
	return &MessageError{Func: f, Description: desc}
}

// binaryFreeList houses a free list of byte slices used to efficiently
// serialize and deserialize integers.
type binaryFreeList chan []byte

var binarySerializer binaryFreeList = make(chan []byte, 32)

func (l binaryFreeList) Borrow() []byte {
	var buf []byte
	select {
	case buf = <-l:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

func (l binaryFreeList) Return(buf []byte) {
	select {
	case l <- buf:
	default:
	}
}

func (l binaryFreeList) Uint8(r io.Reader) (uint8, error) {
	buf := l.Borrow()[:1]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (l binaryFreeList) Uint32(r io.Reader, order binary.ByteOrder) (uint32, error) {
	buf := l.Borrow()[:4]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return order.Uint32(buf), nil
}

func (l binaryFreeList) Uint64(r io.Reader, order binary.ByteOrder) (uint64, error) {
	buf := l.Borrow()[:8]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return order.Uint64(buf), nil
}

func (l binaryFreeList) PutUint8(w io.Writer, val uint8) error {
	buf := l.Borrow()[:1]
	defer l.Return(buf)
	buf[0] = val
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint32(w io.Writer, order binary.ByteOrder, val uint32) error {
	buf := l.Borrow()[:4]
	defer l.Return(buf)
	order.PutUint32(buf, val)
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint64(w io.Writer, order binary.ByteOrder, val uint64) error {
	buf := l.Borrow()[:8]
	defer l.Return(buf)
	order.PutUint64(buf, val)
	_, err := w.Write(buf)
	return err
}

// readElement reads the next sequence of bytes from r using little endian
// depending on element.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		v, err := binarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int32(v)
		return nil
	case *uint8:
		v, err := binarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *uint32:
		v, err := binarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *int64:
		v, err := binarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int64(v)
		return nil
	case *uint64:
		v, err := binarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *bool:
		v, err := binarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = v != 0
		return nil
	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	}
	return binary.Read(r, binary.LittleEndian, element)
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		return binarySerializer.PutUint32(w, binary.LittleEndian, uint32(e))
	case uint8:
		return binarySerializer.PutUint8(w, e)
	case uint32:
		return binarySerializer.PutUint32(w, binary.LittleEndian, e)
	case int64:
		return binarySerializer.PutUint64(w, binary.LittleEndian, uint64(e))
	case uint64:
		return binarySerializer.PutUint64(w, binary.LittleEndian, e)
	case bool:
		var v uint8
		if e {
			v = 1
		}
		return binarySerializer.PutUint8(w, v)
	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	}
	return binary.Write(w, binary.LittleEndian, element)
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64, using the same compact encoding as Bitcoin-lineage wire protocols.
func ReadVarInt(r io.Reader, pver uint32) (uint64, error) {
	discriminant, err := binarySerializer.Uint8(r)
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := binarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = sv

		min := uint64(0x100000000)
		if rv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"%d is not canonically encoded", rv))
		}

	case 0xfe:
		sv, err := binarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)

		min := uint64(0x10000)
		if rv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"%d is not canonically encoded", rv))
		}

	case 0xfd:
		sv, err := binarySerializer.Uint8(r)
		if err != nil {
			return 0, err
		}
		sv2, err := binarySerializer.Uint8(r)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv) | uint64(sv2)<<8

		min := uint64(0xfd)
		if rv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"%d is not canonically encoded", rv))
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value, in the same canonical minimal-length encoding used by
// WriteVarBytes.
func WriteVarInt(w io.Writer, pver uint32, val uint64) error {
	return WriteVarIntFixed(w, pver, val)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= 0xffff {
		return 3
	}
	if val <= 0xffffffff {
		return 5
	}
	return 9
}

// ReadVarBytes reads a variable length byte array. A maxAllowed parameter is
// used to limit the attack where a malicious peer advertises a huge amount
// that would result in a massive allocation.
func ReadVarBytes(r io.Reader, pver uint32, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count > uint64(maxAllowed) {
		return nil, messageError("ReadVarBytes", fmt.Sprintf(
			"%s is larger than the max allowed size [count %d, max %d]",
			fieldName, count, maxAllowed))
	}

	b := make([]byte, count)
	_, err = io.ReadFull(r, b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a varint
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, pver uint32, bytes []byte) error {
	slen := uint64(len(bytes))
	if err := WriteVarIntFixed(w, pver, slen); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}

// WriteVarIntFixed is the byte-exact variable length integer encoder used by
// WriteVarBytes and the transaction/certificate codecs; it always emits the
// canonical minimal-length form.
func WriteVarIntFixed(w io.Writer, pver uint32, val uint64) error {
	switch {
	case val < 0xfd:
		return binarySerializer.PutUint8(w, uint8(val))
	case val <= 0xffff:
		if err := binarySerializer.PutUint8(w, 0xfd); err != nil {
			return err
		}
		if err := binarySerializer.PutUint8(w, uint8(val)); err != nil {
			return err
		}
		return binarySerializer.PutUint8(w, uint8(val>>8))
	case val <= 0xffffffff:
		if err := binarySerializer.PutUint8(w, 0xfe); err != nil {
			return err
		}
		return binarySerializer.PutUint32(w, binary.LittleEndian, uint32(val))
	default:
		if err := binarySerializer.PutUint8(w, 0xff); err != nil {
			return err
		}
		return binarySerializer.PutUint64(w, binary.LittleEndian, val)
	}
}
