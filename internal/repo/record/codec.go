package record

// Record is a value with a unique identifier within its store.
type Record interface {
	RecordID() string
}

// Codec converts records to and from single lines.
type Codec[T Record] interface {
	EncodeLine(rec T) (string, error)
	DecodeLine(line string) (T, error)
}

// LineCodec adapts a pair of functions to Codec.
type LineCodec[T Record] struct {
	Encode func(rec T) (string, error)
	Decode func(line string) (T, error)
}

var _ Codec[Record] = LineCodec[Record]{}

// EncodeLine implements Codec.EncodeLine.
func (c LineCodec[T]) EncodeLine(rec T) (string, error) {
	return c.Encode(rec)
}

// DecodeLine implements Codec.DecodeLine.
func (c LineCodec[T]) DecodeLine(line string) (T, error) {
	return c.Decode(line)
}

// cloner is implemented by records holding references, so mutations can work on a
// private copy.
type cloner[T any] interface {
	Clone() T
}

func clone[T Record](rec T) T {
	if c, ok := any(rec).(cloner[T]); ok {
		return c.Clone()
	}

	return rec
}
