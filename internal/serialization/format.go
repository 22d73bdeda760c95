package serialization

import "time"

// Format constants.
const (
	MagicBytes    = "DGRD"
	FormatVersion = 1
	ChecksumSize  = 32 // SHA-256
	float64Size   = 8
)

// DTypeFloat64 is the only element type buffers carry.
const DTypeFloat64 = "float64"

// Flags.
const (
	FlagHasMetadata   uint32 = 1 << 0
	FlagHasCheckpoint uint32 = 1 << 1
)

// Header is the JSON header of a checkpoint file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	ModelType      string            `json:"model_type"`
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// CheckpointMeta records training progress alongside the weights.
type CheckpointMeta struct {
	Epoch         int     `json:"epoch"`
	Loss          float64 `json:"loss"`
	OptimizerType string  `json:"optimizer_type"`
	LR            float64 `json:"lr"`
}

// TensorMeta describes one buffer in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "front.0.weight"
	DType  string `json:"dtype"`  // always "float64"
	Shape  []int  `json:"shape"`  // buffer shape
	Offset int64  `json:"offset"` // bytes from start of data section
	Size   int64  `json:"size"`   // bytes
}

func (h *Header) flags() uint32 {
	var flags uint32
	if len(h.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if h.CheckpointMeta != nil {
		flags |= FlagHasCheckpoint
	}
	return flags
}
