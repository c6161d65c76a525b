package session

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// ItemRecord is the on-disk form of one decoded trace item, shared by the
// inline JSON form and the external msgpack item files. Exactly one of the
// gap/error/instruction shapes applies: gap records set Gap, error records
// set Error (Address optional), instruction records set Address and carry
// the pre-rendered disassembly.
type ItemRecord struct {
	Address  string `json:"address,omitempty" msgpack:"address,omitempty"`
	Mnemonic string `json:"mnemonic,omitempty" msgpack:"mnemonic,omitempty"`
	Operands string `json:"operands,omitempty" msgpack:"operands,omitempty"`
	Comment  string `json:"comment,omitempty" msgpack:"comment,omitempty"`
	Gap      bool   `json:"gap,omitempty" msgpack:"gap,omitempty"`
	Error    string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// ReadItemsFile decodes a msgpack item file produced by WriteItemsFile or an
// external decoder.
func ReadItemsFile(path string) ([]ItemRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}
	var records []ItemRecord
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode items file %s: %w", path, err)
	}
	return records, nil
}

// WriteItemsFile encodes item records to a msgpack item file.
func WriteItemsFile(path string, records []ItemRecord) error {
	data, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write items file: %w", err)
	}
	return nil
}
