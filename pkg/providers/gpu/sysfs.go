package gpu

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

const drmClassDir = "/sys/class/drm"

var cardPattern = regexp.MustCompile(`^card[0-9]+$`)

// sysfsBackend reads GPU statistics from the DRM sysfs files the amdgpu
// driver exposes: gpu_busy_percent, mem_info_vram_used and
// mem_info_vram_total under each card's device directory.
type sysfsBackend struct {
	root string
}

func newSysfsBackend() *sysfsBackend {
	return &sysfsBackend{root: drmClassDir}
}

func (b *sysfsBackend) cardDirs() []string {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		if !cardPattern.MatchString(entry.Name()) {
			continue
		}
		devicePath := filepath.Join(b.root, entry.Name(), "device")
		if _, err := os.Stat(filepath.Join(devicePath, "gpu_busy_percent")); err != nil {
			continue
		}
		dirs = append(dirs, devicePath)
	}
	return dirs
}

func (b *sysfsBackend) supported() bool {
	return len(b.cardDirs()) > 0
}

func (b *sysfsBackend) devices(c *sensors.Container) []*deviceObject {
	var devs []*deviceObject
	for i, dir := range b.cardDirs() {
		id := fmt.Sprintf("gpu%d", i)
		name := fmt.Sprintf("GPU %d", i+1)
		if model := readSysfsString(filepath.Join(dir, "product_name")); model != "" {
			name = model
		}
		devs = append(devs, newDeviceObject(id, name, dir, c))
	}
	return devs
}

func (b *sysfsBackend) update(devices []*deviceObject) error {
	for _, d := range devices {
		if !d.object.IsSubscribed() {
			continue
		}
		if busy, ok := readSysfsInt(filepath.Join(d.devicePath, "gpu_busy_percent")); ok {
			d.usage.SetValue(busy)
		}
		if used, ok := readSysfsInt(filepath.Join(d.devicePath, "mem_info_vram_used")); ok {
			d.usedVram.SetValue(used)
		}
		if total, ok := readSysfsInt(filepath.Join(d.devicePath, "mem_info_vram_total")); ok {
			d.totalVram.SetValue(total)
			d.totalVram.SetMax(total)
			d.usedVram.SetMax(total)
		}
	}
	return nil
}

func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readSysfsInt(path string) (int64, bool) {
	s := readSysfsString(path)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
