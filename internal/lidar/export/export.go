// Package export writes projected point clouds to text formats readable
// by CloudCompare and PCL. Pixels without a return are skipped.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
	"github.com/banshee-data/xyzlut/internal/monitoring"
	"github.com/banshee-data/xyzlut/internal/security"
)

var logf = monitoring.Component("export")

// Format selects the output file format.
type Format string

const (
	FormatASC Format = "asc"
	FormatPCD Format = "pcd"
)

// ParseFormat accepts "asc" or "pcd", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatASC, FormatPCD:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want asc or pcd)", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// WriteASC writes one "X Y Z Beam Column" line per return.
func WriteASC(w io.Writer, cloud xyzlut.PointCloud) (int, error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Exported points\n")
	fmt.Fprintf(bw, "# Format: X Y Z Beam Column\n")

	n := 0
	for row := 0; row < cloud.Rows; row++ {
		for col := 0; col < cloud.Columns; col++ {
			if !cloud.Valid(row, col) {
				continue
			}
			p := cloud.At(row, col)
			fmt.Fprintf(bw, "%.6f %.6f %.6f %d %d\n", p[0], p[1], p[2], row, col)
			n++
		}
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("write asc: %w", err)
	}
	return n, nil
}

// WritePCD writes an unorganised ASCII PCD v0.7 cloud of the returns.
func WritePCD(w io.Writer, cloud xyzlut.PointCloud) (int, error) {
	n := cloud.Count()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# .PCD v0.7 - Point Cloud Data file format\n")
	fmt.Fprintf(bw, "VERSION 0.7\n")
	fmt.Fprintf(bw, "FIELDS x y z\n")
	fmt.Fprintf(bw, "SIZE 8 8 8\n")
	fmt.Fprintf(bw, "TYPE F F F\n")
	fmt.Fprintf(bw, "COUNT 1 1 1\n")
	fmt.Fprintf(bw, "WIDTH %d\n", n)
	fmt.Fprintf(bw, "HEIGHT 1\n")
	fmt.Fprintf(bw, "VIEWPOINT 0 0 0 1 0 0 0\n")
	fmt.Fprintf(bw, "POINTS %d\n", n)
	fmt.Fprintf(bw, "DATA ascii\n")

	for k := 0; k+2 < len(cloud.XYZ); k += 3 {
		x, y, z := cloud.XYZ[k], cloud.XYZ[k+1], cloud.XYZ[k+2]
		if x == 0 && y == 0 && z == 0 {
			continue
		}
		fmt.Fprintf(bw, "%.6f %.6f %.6f\n", x, y, z)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("write pcd: %w", err)
	}
	return n, nil
}

// Write dispatches on format.
func Write(w io.Writer, format Format, cloud xyzlut.PointCloud) (int, error) {
	switch format {
	case FormatASC:
		return WriteASC(w, cloud)
	case FormatPCD:
		return WritePCD(w, cloud)
	}
	return 0, fmt.Errorf("unknown export format %q", format)
}

// SaveCloud writes cloud to dir/name.<ext>. name is reduced to a safe base
// filename and the result must stay inside dir. It returns the path written.
func SaveCloud(dir, name string, format Format, cloud xyzlut.PointCloud) (string, error) {
	if cloud.Count() == 0 {
		return "", fmt.Errorf("no points to export")
	}
	if !strings.HasSuffix(name, format.Ext()) {
		name += format.Ext()
	}
	path, err := security.ConfinedPath(dir, name)
	if err != nil {
		return "", fmt.Errorf("invalid export path: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	n, err := Write(f, format, cloud)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	logf("exported %d points to %s", n, path)
	return path, nil
}
