package solver

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"waypoint-route-service/internal/distmatrix"
)

// Frames exchanged with the worker process, little-endian:
//
//	matrix:      "WPM1" | n uint32 | n*n float32 (row-major)
//	permutation: "WPP1" | n uint32 | n uint32
var (
	matrixMagic      = [4]byte{'W', 'P', 'M', '1'}
	permutationMagic = [4]byte{'W', 'P', 'P', '1'}
)

// maxFrameDim guards allocations when decoding untrusted frames.
const maxFrameDim = 1 << 17

// ErrFrame reports a malformed worker frame.
var ErrFrame = errors.New("solver: malformed frame")

// WriteMatrix encodes m as a matrix frame.
func WriteMatrix(w io.Writer, m *distmatrix.Matrix) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	if err := writeHeader(bw, matrixMagic, m.N()); err != nil {
		return fmt.Errorf("write matrix frame: %w", err)
	}

	var buf [4]byte
	for _, v := range m.Data() {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write matrix frame: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write matrix frame: flush: %w", err)
	}
	return nil
}

// ReadMatrix decodes a matrix frame.
func ReadMatrix(r io.Reader) (*distmatrix.Matrix, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	n, err := readHeader(br, matrixMagic)
	if err != nil {
		return nil, fmt.Errorf("read matrix frame: %w", err)
	}

	data := make([]float32, n*n)
	var buf [4]byte
	for i := range data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("read matrix frame: entry %d: %w", i, err)
		}
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	}

	m, err := distmatrix.FromData(n, data)
	if err != nil {
		return nil, fmt.Errorf("read matrix frame: %w", err)
	}
	return m, nil
}

// WritePermutation encodes perm as a permutation frame.
func WritePermutation(w io.Writer, perm []int) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, permutationMagic, len(perm)); err != nil {
		return fmt.Errorf("write permutation frame: %w", err)
	}

	var buf [4]byte
	for _, v := range perm {
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write permutation frame: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write permutation frame: flush: %w", err)
	}
	return nil
}

// ReadPermutation decodes a permutation frame. It does not validate the bijection.
func ReadPermutation(r io.Reader) ([]int, error) {
	br := bufio.NewReader(r)
	n, err := readHeader(br, permutationMagic)
	if err != nil {
		return nil, fmt.Errorf("read permutation frame: %w", err)
	}

	perm := make([]int, n)
	var buf [4]byte
	for i := range perm {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("read permutation frame: entry %d: %w", i, err)
		}
		perm[i] = int(binary.LittleEndian.Uint32(buf[:]))
	}
	return perm, nil
}

func writeHeader(w io.Writer, magic [4]byte, n int) error {
	if n < 0 || n > maxFrameDim {
		return fmt.Errorf("%w: dimension %d out of range", ErrFrame, n)
	}
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint32(n))
}

func readHeader(r io.Reader, magic [4]byte) (int, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return 0, fmt.Errorf("%w: magic: %w", ErrFrame, err)
	}
	if got != magic {
		return 0, fmt.Errorf("%w: unexpected magic %q", ErrFrame, got[:])
	}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("%w: dimension: %w", ErrFrame, err)
	}
	if n > maxFrameDim {
		return 0, fmt.Errorf("%w: dimension %d exceeds %d", ErrFrame, n, maxFrameDim)
	}
	return int(n), nil
}
