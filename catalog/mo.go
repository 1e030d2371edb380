package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// moMagic is the little-endian GNU MO file magic number.
const moMagic = 0x950412de

// WriteMO serializes the compiled form of the catalog: the header entry
// plus every reviewed translation. Untranslated, fuzzy, and obsolete
// entries are omitted, matching what the lookup path may serve.
func (c *Catalog) WriteMO(w io.Writer) error {
	type pair struct {
		id, str string
	}

	var headerValue bytes.Buffer
	for _, key := range c.headerOrder {
		fmt.Fprintf(&headerValue, "%s: %s\n", key, c.Header[key])
	}

	pairs := []pair{{id: "", str: headerValue.String()}}
	for _, e := range c.Entries() {
		if !e.Translated() {
			continue
		}
		id := e.ID
		if e.Context != "" {
			// gettext joins context and id with EOT.
			id = e.Context + "\x04" + e.ID
		}
		pairs = append(pairs, pair{id: id, str: e.Translation})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	n := uint32(len(pairs))
	const headerSize = 28
	origTable := headerSize
	transTable := origTable + 8*int(n)
	stringsStart := transTable + 8*int(n)

	var blob bytes.Buffer
	origEntries := make([][2]uint32, n)
	transEntries := make([][2]uint32, n)
	for i, p := range pairs {
		origEntries[i] = [2]uint32{uint32(len(p.id)), uint32(stringsStart + blob.Len())}
		blob.WriteString(p.id)
		blob.WriteByte(0)
	}
	for i, p := range pairs {
		transEntries[i] = [2]uint32{uint32(len(p.str)), uint32(stringsStart + blob.Len())}
		blob.WriteString(p.str)
		blob.WriteByte(0)
	}

	var out bytes.Buffer
	header := []uint32{
		moMagic,
		0, // format revision
		n,
		uint32(origTable),
		uint32(transTable),
		0, // hash table unused
		0,
	}
	for _, v := range header {
		binary.Write(&out, binary.LittleEndian, v)
	}
	for _, e := range origEntries {
		binary.Write(&out, binary.LittleEndian, e)
	}
	for _, e := range transEntries {
		binary.Write(&out, binary.LittleEndian, e)
	}
	out.Write(blob.Bytes())

	_, err := w.Write(out.Bytes())
	return err
}

// ReadMOCount validates an MO blob and returns the number of strings it
// carries. Used by the file-integrity check without a full decode.
func ReadMOCount(data []byte) (int, error) {
	if len(data) < 28 {
		return 0, fmt.Errorf("mo artifact too short: %d bytes", len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != moMagic {
		return 0, fmt.Errorf("bad mo magic 0x%08x", magic)
	}
	n := binary.LittleEndian.Uint32(data[8:12])
	origTable := binary.LittleEndian.Uint32(data[12:16])
	if int(origTable)+int(n)*8 > len(data) {
		return 0, fmt.Errorf("mo string table truncated")
	}
	return int(n), nil
}
