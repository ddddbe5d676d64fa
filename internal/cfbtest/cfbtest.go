// Package cfbtest builds small compound files (OLE2) for tests.
package cfbtest

import (
	"encoding/binary"
	"unicode/utf16"
)

const (
	sectorSize = 512
	entrySize  = 128

	endOfChain = 0xFFFFFFFE
	fatSector  = 0xFFFFFFFD
	free       = 0xFFFFFFFF
	noStream   = 0xFFFFFFFF

	typeStream = 2
	typeRoot   = 5
)

// MaxStreams is the number of streams Build fits in its single directory
// sector.
const MaxStreams = sectorSize/entrySize - 1

// Build returns a version 3 compound file holding one empty stream per
// name, in order, below the root entry. It panics when given more than
// MaxStreams names or a name longer than 31 characters.
func Build(names ...string) []byte {
	if len(names) > MaxStreams {
		panic("cfbtest: too many streams")
	}
	buf := make([]byte, 3*sectorSize)
	le := binary.LittleEndian

	// Header.
	copy(buf, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	le.PutUint16(buf[24:], 0x003E)
	le.PutUint16(buf[26:], 3)
	le.PutUint16(buf[28:], 0xFFFE)
	le.PutUint16(buf[30:], 9)
	le.PutUint16(buf[32:], 6)
	le.PutUint32(buf[44:], 1) // FAT sectors
	le.PutUint32(buf[48:], 1) // first directory sector
	le.PutUint32(buf[56:], 0x1000)
	le.PutUint32(buf[60:], endOfChain)
	le.PutUint32(buf[68:], endOfChain)
	le.PutUint32(buf[76:], 0) // the FAT lives in sector 0
	for off := 80; off < sectorSize; off += 4 {
		le.PutUint32(buf[off:], free)
	}

	// Sector 0: FAT. Sector 1 is a one sector directory chain.
	fat := buf[sectorSize : 2*sectorSize]
	le.PutUint32(fat[0:], fatSector)
	le.PutUint32(fat[4:], endOfChain)
	for off := 8; off < sectorSize; off += 4 {
		le.PutUint32(fat[off:], free)
	}

	dir := buf[2*sectorSize:]
	for i := 0; i < sectorSize/entrySize; i++ {
		e := dir[i*entrySize : (i+1)*entrySize]
		le.PutUint32(e[68:], noStream)
		le.PutUint32(e[72:], noStream)
		le.PutUint32(e[76:], noStream)
	}

	root := dir[:entrySize]
	putName(root, "Root Entry")
	root[66] = typeRoot
	root[67] = 1
	le.PutUint32(root[116:], endOfChain)
	if len(names) > 0 {
		le.PutUint32(root[76:], 1)
	}

	// Streams hang off the root as a chain of right siblings.
	for i, name := range names {
		e := dir[(i+1)*entrySize : (i+2)*entrySize]
		putName(e, name)
		e[66] = typeStream
		e[67] = 1
		if i+1 < len(names) {
			le.PutUint32(e[72:], uint32(i+2))
		}
		le.PutUint32(e[116:], endOfChain)
	}
	return buf
}

func putName(e []byte, name string) {
	units := utf16.Encode([]rune(name))
	if len(units) > 31 {
		panic("cfbtest: stream name too long")
	}
	for i, u := range units {
		binary.LittleEndian.PutUint16(e[i*2:], u)
	}
	binary.LittleEndian.PutUint16(e[64:], uint16((len(units)+1)*2))
}
