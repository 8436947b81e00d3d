package atlas

import "fmt"

// AppendInstances is the C3 Instance Ingest append primitive: it appends a
// batch of transforms and identifiers into the instance buffers at the
// current instance cursor and returns the index of the first instance
// written. One chunk of input may call this multiple times; each call is
// independent and instances are never moved once written.
func (p *Pool) AppendInstances(transforms []InstanceTransform, ids []uint32) (uint32, error) {
	if p.phase != Loading {
		return 0, fmt.Errorf("atlas: append_instances: %w", ErrPhaseViolation)
	}
	if len(transforms) == 0 || len(ids) == 0 {
		return 0, fmt.Errorf("atlas: append_instances: transforms and ids must be non-empty")
	}
	if len(transforms) != len(ids) {
		return 0, fmt.Errorf("atlas: append_instances: transforms/ids length mismatch (%d != %d)", len(transforms), len(ids))
	}
	if p.instanceCount+uint32(len(transforms)) > p.capacities.Instances {
		return 0, fmt.Errorf("atlas: append_instances: instance buffers full: %w", ErrCapacityExceeded)
	}

	start := p.instanceCount

	transformBytes := make([]byte, len(transforms)*64)
	for i, t := range transforms {
		copy(transformBytes[i*64:(i+1)*64], t.Marshal())
	}
	p.writeBuffer(p.instanceTransforms, uint64(start)*64, transformBytes)

	identifierBytes := make([]byte, len(ids)*16)
	for i, id := range ids {
		copy(identifierBytes[i*16:(i+1)*16], NewInstanceIdentifier(id).Marshal())
	}
	p.writeBuffer(p.instanceIdentifiers, uint64(start)*16, identifierBytes)

	p.instanceCount += uint32(len(transforms))

	return start, nil
}

// RecordCommandInstances accumulates a pending (command, first_instance,
// count) segment. The segment is not yet visible to the remap buffer; it
// becomes visible only once Finalize compacts all recorded segments.
func (p *Pool) RecordCommandInstances(commandIndex int32, firstInstanceStart uint32, count uint32) error {
	if p.phase != Loading {
		return fmt.Errorf("atlas: record_command_instances: %w", ErrPhaseViolation)
	}
	if commandIndex < 0 || uint32(commandIndex) >= uint32(len(p.commands)) {
		return fmt.Errorf("atlas: record_command_instances: command index %d out of range", commandIndex)
	}
	if count == 0 {
		return nil
	}
	if uint64(firstInstanceStart)+uint64(count) > uint64(p.instanceCount) {
		return fmt.Errorf("atlas: record_command_instances: segment [%d,%d) exceeds appended instance count %d", firstInstanceStart, firstInstanceStart+count, p.instanceCount)
	}

	p.pendingSegments = append(p.pendingSegments, segment{
		command:       uint32(commandIndex),
		firstInstance: firstInstanceStart,
		count:         count,
	})
	return nil
}
