package atlas

import (
	"fmt"
	"log"
)

// unmappedCommand marks an instance→command map entry for an instance that
// no segment ever referenced. cullInstances reads the map for every
// instance and skips any instance whose entry is not a valid command index,
// so such an instance is never written into a remap region.
const unmappedCommand = ^uint32(0)

// Finalize is the C4 Finalizer, run once after all ingest is complete. It
// compacts every pending segment so that each command's instances occupy a
// contiguous subrange of the remap buffer, builds the instance→command map
// and command base-offset table, uploads everything in one burst, and
// transitions the pool Loading → Finalized. It is idempotent after success
// and refuses to run on an empty segment list (§7 FinalizeEmpty).
func (p *Pool) Finalize() error {
	if p.phase == Finalized {
		return nil
	}
	if len(p.pendingSegments) == 0 {
		log.Printf("[Atlas] finalize called with no pending segments, remaining in Loading")
		return fmt.Errorf("atlas: finalize: %w", ErrFinalizeEmpty)
	}

	// Step 1: bucket segments by command_index. Appending to each bucket in
	// encounter order preserves recording order within a command (§4.4 tie-break).
	buckets := make([][]segment, len(p.commands))
	for _, seg := range p.pendingSegments {
		buckets[seg.command] = append(buckets[seg.command], seg)
	}

	remap := make([]uint32, 0, p.instanceCount)
	instanceCmdMap := make([]uint32, p.instanceCount)
	for i := range instanceCmdMap {
		instanceCmdMap[i] = unmappedCommand
	}
	baseOffsets := make([]uint32, len(p.commands))

	var cursor uint32
	for c := range p.commands {
		offset := cursor
		var written uint32
		for _, seg := range buckets[c] {
			for i := uint32(0); i < seg.count; i++ {
				t := seg.firstInstance + i
				remap = append(remap, t)
				instanceCmdMap[t] = uint32(c)
				written++
			}
		}
		p.commands[c].FirstInstance = offset
		p.commands[c].InstanceCount = written
		baseOffsets[c] = offset
		cursor += written
	}

	remapBytes := make([]byte, len(remap)*4)
	for i, t := range remap {
		b := remapBytes[i*4 : i*4+4]
		b[0] = byte(t)
		b[1] = byte(t >> 8)
		b[2] = byte(t >> 16)
		b[3] = byte(t >> 24)
	}
	p.writeBuffer(p.remap, 0, remapBytes)

	commandBytes := make([]byte, len(p.commands)*20)
	for i, cmd := range p.commands {
		copy(commandBytes[i*20:(i+1)*20], cmd.Marshal())
	}
	p.writeBuffer(p.indirectCommands, 0, commandBytes)

	mapBytes := make([]byte, len(instanceCmdMap)*4)
	for i, c := range instanceCmdMap {
		b := mapBytes[i*4 : i*4+4]
		b[0] = byte(c)
		b[1] = byte(c >> 8)
		b[2] = byte(c >> 16)
		b[3] = byte(c >> 24)
	}
	p.writeBuffer(p.instanceCommandMap, 0, mapBytes)

	offsetBytes := make([]byte, len(baseOffsets)*4)
	for i, o := range baseOffsets {
		b := offsetBytes[i*4 : i*4+4]
		b[0] = byte(o)
		b[1] = byte(o >> 8)
		b[2] = byte(o >> 16)
		b[3] = byte(o >> 24)
	}
	p.writeBuffer(p.commandBaseOffsets, 0, offsetBytes)

	sphereBytes := make([]byte, len(p.boundingSpheresH)*16)
	for i, s := range p.boundingSpheresH {
		copy(sphereBytes[i*16:(i+1)*16], s.Marshal())
	}
	p.writeBuffer(p.boundingSpheres, 0, sphereBytes)

	p.remapHost = remap
	p.instanceCommandMapHost = instanceCmdMap
	p.baseOffsetsHost = baseOffsets

	p.pendingSegments = nil
	p.phase = Finalized
	log.Printf("[Atlas] finalized: %d commands, %d remap entries", len(p.commands), len(remap))

	return nil
}
