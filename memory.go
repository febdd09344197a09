package vmsnparser

import (
	"fmt"
	"log/slog"
)

// Run is a contiguous mapping from guest physical memory into the snapshot
// file.
type Run struct {
	GuestPhysicalOffset uint64
	FileOffset          uint64
	Length              uint64
}

// AddressSpace is the physical-memory address space: a run table built once
// from the memory group, plus the first vCPU's CR3.
type AddressSpace struct {
	parser *Parser
	runs   []Run
	dtb    uint32
}

// Open probes src for a VMware snapshot and, if found, builds the run table
// and extracts CR3. A non-matching src fails with ErrWrongFormat; callers
// chain to the next candidate address space on that error.
func Open(src ByteSource) (*AddressSpace, error) {
	parser, err := NewParser(src)
	if err != nil {
		// Any header-level mismatch means "not my format", not "my format,
		// but broken" — that distinction belongs to the lookups below,
		// which run only once the magic has matched.
		return nil, fmt.Errorf("%w: %v", ErrWrongFormat, err)
	}

	as := &AddressSpace{parser: parser}
	if err := as.buildRunTable(); err != nil {
		parser.Close()
		return nil, err
	}
	if err := as.extractDTB(); err != nil {
		parser.Close()
		return nil, err
	}
	return as, nil
}

func (as *AddressSpace) buildRunTable() error {
	memory, err := as.parser.Group("memory")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMemoryNotEmbedded, err)
	}

	memoryTag, err := lookupTerminal(memory, "Memory", 0, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMemoryNotEmbedded, err)
	}
	baseFileOffset := uint64(memoryTag.PayloadOffset())

	regionCount, hasRegions, err := readRegionCount(memory)
	if err != nil {
		return err
	}

	if !hasRegions || regionCount == 0 {
		if !isPageMultiple(memoryTag.OnDiskSize()) {
			slog.Warn("vmsnparser: single-region Memory tag size is not a whole number of pages", "size", memoryTag.OnDiskSize())
		}
		as.runs = []Run{{
			GuestPhysicalOffset: 0,
			FileOffset:          baseFileOffset,
			Length:              memoryTag.OnDiskSize(),
		}}
		return nil
	}

	runs := make([]Run, 0, regionCount)
	for i := uint32(0); i < regionCount; i++ {
		ppn, err := lookupArrayU32(memory, "regionPPN", i)
		if err != nil {
			return fmt.Errorf("%w: regionPPN[%d]: %v", ErrCorruptRegionTable, i, err)
		}
		pageNum, err := lookupArrayU32(memory, "regionPageNum", i)
		if err != nil {
			return fmt.Errorf("%w: regionPageNum[%d]: %v", ErrCorruptRegionTable, i, err)
		}
		size, err := lookupArrayU32(memory, "regionSize", i)
		if err != nil {
			return fmt.Errorf("%w: regionSize[%d]: %v", ErrCorruptRegionTable, i, err)
		}

		runs = append(runs, Run{
			GuestPhysicalOffset: uint64(ppn) * pageSize,
			FileOffset:          uint64(pageNum)*pageSize + baseFileOffset,
			Length:              uint64(size) * pageSize,
		})
	}
	as.runs = runs
	return nil
}

// readRegionCount reads memory.regionsCount if present. hasRegions is false
// if the tag is absent entirely (the single-region fallback path).
func readRegionCount(memory *Group) (count uint32, hasRegions bool, err error) {
	res, err := memory.Lookup("regionsCount")
	if err != nil {
		return 0, false, nil
	}
	if res.Terminal == nil {
		return 0, false, nil
	}
	v, err := res.Terminal.U32()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func lookupTerminal(group *Group, name string, indices ...uint32) (*Tag, error) {
	res, err := group.Lookup(name, indices...)
	if err != nil {
		return nil, err
	}
	if res.Terminal == nil {
		return nil, fmt.Errorf("%w: %s.%s%v resolved to a meta-tag, not a terminal tag", ErrNotFound, group.Name(), name, indices)
	}
	return res.Terminal, nil
}

func lookupArrayU32(group *Group, name string, index uint32) (uint32, error) {
	tag, err := lookupTerminal(group, name, index)
	if err != nil {
		return 0, err
	}
	return tag.U32()
}

func (as *AddressSpace) extractDTB() error {
	cpu, err := as.parser.Group("cpu")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoCR3, err)
	}
	tag, err := lookupTerminal(cpu, "CR", 0, 3)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoCR3, err)
	}
	dtb, err := tag.U32()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoCR3, err)
	}
	as.dtb = dtb
	return nil
}

// Runs returns the run table, insertion-ordered as discovered.
func (as *AddressSpace) Runs() []Run {
	return append([]Run(nil), as.runs...)
}

func (as *AddressSpace) DTB() uint32 {
	return as.dtb
}

// Read reads length bytes of guest-physical memory starting at addr. A read
// that falls entirely outside every run returns (nil, false) rather than an
// error. A read spanning a run boundary is split and concatenated; a read
// that is only partially covered returns just the covered prefix with
// ok=true.
func (as *AddressSpace) Read(addr uint64, length int) ([]byte, bool) {
	out := make([]byte, 0, length)
	remaining := uint64(length)
	cursor := addr

	for remaining > 0 {
		run, ok := as.runAt(cursor)
		if !ok {
			break
		}
		runEnd := run.GuestPhysicalOffset + run.Length
		avail := runEnd - cursor
		want := remaining
		if want > avail {
			want = avail
		}

		fileOff := run.FileOffset + (cursor - run.GuestPhysicalOffset)
		chunk, err := as.parser.reader.ReadAtBytes(int64(fileOff), int(want))
		if err != nil {
			break
		}
		out = append(out, chunk...)
		cursor += want
		remaining -= want
	}

	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// runAt returns the run covering addr, if any. Overlapping runs are not
// expected and not defended against.
func (as *AddressSpace) runAt(addr uint64) (Run, bool) {
	for _, run := range as.runs {
		if addr >= run.GuestPhysicalOffset && addr < run.GuestPhysicalOffset+run.Length {
			return run, true
		}
	}
	return Run{}, false
}

func (as *AddressSpace) Close() error {
	return as.parser.Close()
}
