package types

// Photo is an uploaded ingredient image held in memory
type Photo struct {
	MediaType string
	Data      []byte
}
