package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/born-ml/dyngrad/internal/tensor"
)

// Write encodes stateDict to w. Tensors are stored in name order; header
// fields other than Tensors and FormatVersion are written as given, and a
// zero CreatedAt is set to the current time.
func Write(w io.Writer, stateDict map[string]*tensor.Buffer, header Header) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header.FormatVersion = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	header.Tensors = make([]TensorMeta, 0, len(names))

	var data []byte
	for _, name := range names {
		buf := stateDict[name]
		if buf == nil {
			return errors.Errorf("tensor %q is nil", name)
		}
		values := buf.Data()
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  DTypeFloat64,
			Shape:  []int(buf.Shape()),
			Offset: int64(len(data)),
			Size:   int64(len(values) * float64Size),
		})
		for _, v := range values {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(MagicBytes); err != nil {
		return errors.Wrap(err, "write magic bytes")
	}
	fixed := []any{uint32(FormatVersion), header.flags(), uint64(len(headerJSON))}
	for _, v := range fixed {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return errors.Wrap(err, "write fixed header")
		}
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}
	checksum := ComputeChecksum(data)
	if _, err := bw.Write(checksum[:]); err != nil {
		return errors.Wrap(err, "write checksum")
	}
	if _, err := bw.Write(data); err != nil {
		return errors.Wrap(err, "write tensor data")
	}
	return errors.Wrap(bw.Flush(), "flush")
}

// SaveFile writes stateDict to path, replacing any existing file.
func SaveFile(path string, stateDict map[string]*tensor.Buffer, header Header) error {
	//nolint:gosec // G304: path comes from the user, which is expected for model saving
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create checkpoint")
	}
	if err := Write(f, stateDict, header); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close checkpoint")
}
