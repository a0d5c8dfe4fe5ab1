package timer

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype of every TimerService call.
const CodecName = "cbor"

var (
	// encMode encodes deterministically with integer keys.
	//nolint:gochecknoglobals // Built once and shared by every call.
	encMode cbor.EncMode
	// decMode tolerates unknown and duplicate keys for forward compatibility.
	//nolint:gochecknoglobals // Built once and shared by every call.
	decMode cbor.DecMode
)

func init() { //nolint:gochecknoinits // Codecs must be registered before any connection is made.
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnixMicro,
	}

	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}

	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("create CBOR decoder mode: %v", err))
	}

	encoding.RegisterCodec(codec{})
}

// codec adapts CBOR to the gRPC encoding.Codec interface.
type codec struct{}

// Marshal encodes a message.
func (codec) Marshal(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal %T: %w", v, err)
	}

	return data, nil
}

// Unmarshal decodes a message.
func (codec) Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cbor unmarshal %T: %w", v, err)
	}

	return nil
}

// Name returns the codec's content subtype.
func (codec) Name() string {
	return CodecName
}
