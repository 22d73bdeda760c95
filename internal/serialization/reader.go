package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/dyngrad/internal/tensor"
)

// Read decodes a checkpoint written by Write. The header is validated and
// the data checksum verified before any buffer is built.
func Read(r io.Reader) (map[string]*tensor.Buffer, Header, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, Header{}, errors.Wrap(err, "read magic bytes")
	}
	if string(magic) != MagicBytes {
		return nil, Header{}, errors.WithStack(ErrInvalidMagic)
	}

	var (
		version, flags uint32
		headerSize     uint64
	)
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, Header{}, errors.Wrap(err, "read version")
	}
	if version != FormatVersion {
		return nil, Header{}, errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}
	if err := binary.Read(br, binary.LittleEndian, &flags); err != nil {
		return nil, Header{}, errors.Wrap(err, "read flags")
	}
	if err := binary.Read(br, binary.LittleEndian, &headerSize); err != nil {
		return nil, Header{}, errors.Wrap(err, "read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, Header{}, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(br, headerJSON); err != nil {
		return nil, Header{}, errors.Wrap(err, "read header")
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, Header{}, errors.Wrap(err, "parse header")
	}

	var stored [ChecksumSize]byte
	if _, err := io.ReadFull(br, stored[:]); err != nil {
		return nil, Header{}, errors.Wrap(err, "read checksum")
	}
	data, err := io.ReadAll(br)
	if err != nil {
		return nil, Header{}, errors.Wrap(err, "read tensor data")
	}

	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return nil, Header{}, errors.Wrap(err, "validate header")
	}
	if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
		return nil, Header{}, err
	}

	stateDict := make(map[string]*tensor.Buffer, len(header.Tensors))
	for _, meta := range header.Tensors {
		raw := data[meta.Offset : meta.Offset+meta.Size]
		values := make([]float64, len(raw)/float64Size)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*float64Size:]))
		}
		buf, err := tensor.FromSlice(values, meta.Shape)
		if err != nil {
			return nil, Header{}, errors.Wrapf(err, "tensor %q", meta.Name)
		}
		stateDict[meta.Name] = buf
	}
	return stateDict, header, nil
}

// LoadFile reads a checkpoint from path.
func LoadFile(path string) (map[string]*tensor.Buffer, Header, error) {
	//nolint:gosec // G304: path comes from the user, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, errors.Wrap(err, "open checkpoint")
	}
	defer f.Close()
	return Read(f)
}
