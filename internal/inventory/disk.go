package inventory

import (
	"context"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// Disks lists physical mounted partitions. Usage is filled per partition
// where statfs succeeds; an unreadable mountpoint keeps its entry with
// empty usage fields.
func (c *Collector) Disks(ctx context.Context) types.DiskInventory {
	parts, err := c.src.Partitions(ctx, false)
	ev := engine.RecordCall("disk.Partitions", count(len(parts), "partition"), err)
	if err != nil {
		return types.DiskInventory{
			Partitions: []types.Partition{},
			FactStatus: c.failed("disks", "mounted filesystems", []types.Evidence{ev}),
		}
	}

	out := make([]types.Partition, 0, len(parts))
	unreadable := 0
	for _, p := range parts {
		part := types.Partition{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			FSType:     p.Fstype,
			Options:    p.Opts,
		}
		usage, err := c.src.Usage(ctx, p.Mountpoint)
		if err != nil || usage == nil {
			unreadable++
			c.log.WithField("mountpoint", p.Mountpoint).WithError(err).Debug("disk usage unavailable")
		} else {
			part.TotalBytes = types.Ptr(usage.Total)
			part.FreeBytes = types.Ptr(usage.Free)
			part.UsedPercent = types.Ptr(usage.UsedPercent)
		}
		out = append(out, part)
	}
	if unreadable > 0 {
		ev.Stderr = count(unreadable, "mountpoint") + " without usage"
	}

	return types.DiskInventory{
		Partitions: out,
		FactStatus: types.CheckedStatus(SourceDisk, []types.Evidence{ev}),
	}
}
