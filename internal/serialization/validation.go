package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/dyngrad/internal/tensor"
)

// Validation limits.
const (
	MaxHeaderSize    = 16 * 1024 * 1024
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 256
)

// ValidateTensorName rejects empty, oversized and path-like names.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Err: ErrInvalidTensorName, Details: "empty name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Err:     ErrInvalidTensorName,
			Tensor:  name[:32] + "...",
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case strings.Contains(name, ".."), strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Details: "contains path characters"}
	}
	return nil
}

// ValidateTensorOffsets checks that every tensor lies inside the data
// section, that no two overlap, and that size matches shape.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 || t.Offset > dataSize || t.Size > dataSize-t.Offset {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d, data size %d", t.Offset, t.Size, dataSize),
			}
		}
		if err := tensor.Shape(t.Shape).Validate(); err != nil {
			return &ValidationError{Err: ErrOutOfBounds, Tensor: t.Name, Details: err.Error()}
		}
		n, ok := elementCount(t.Shape, dataSize/float64Size)
		if !ok {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v exceeds data size %d", t.Shape, dataSize),
			}
		}
		if want := n * float64Size; t.Size != want {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("size %d does not match shape %v", t.Size, t.Shape),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Err:     ErrOffsetOverlap,
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// ValidateHeader runs all header checks against a data section of dataSize bytes.
func ValidateHeader(h *Header, dataSize int64) error {
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Err:     ErrTooManyTensors,
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}
	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Err: ErrInvalidTensorName, Tensor: t.Name, Details: "duplicate name"}
		}
		seen[t.Name] = true
		if t.DType != DTypeFloat64 {
			return &ValidationError{Err: ErrInvalidTensorName, Tensor: t.Name, Details: "unsupported dtype " + t.DType}
		}
	}
	return ValidateTensorOffsets(h.Tensors, dataSize)
}

// elementCount returns the number of elements in shape, or false if it
// exceeds limit. Dimensions must already be positive.
func elementCount(shape []int, limit int64) (int64, bool) {
	n := int64(1)
	for _, dim := range shape {
		if int64(dim) > limit/n {
			return 0, false
		}
		n *= int64(dim)
	}
	return n, true
}
