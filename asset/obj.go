package asset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"orbit-renderer/core"
	"orbit-renderer/gpu"
	"orbit-renderer/math"
)

type objIndex struct{ v, vt, vn int }

type objGroup struct {
	material string
	indices  []uint32
}

// LoadOBJ parses a Wavefront .obj file.
func LoadOBJ(path string) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseOBJ(f, name)
}

// ParseOBJ reads OBJ geometry into a single mesh. Polygons are fan
// triangulated, vertices are shared between faces that reference the same
// (v, vt, vn) triple, and each usemtl group becomes a submesh in the order
// it first appears. Normals are generated when the file has none.
// Material libraries are not read.
func ParseOBJ(r io.Reader, name string) (*MeshData, error) {
	var positions []math.Vec3
	var normals []math.Vec3
	var uvs []math.Vec2

	mesh := &MeshData{Name: name}
	vertMap := map[objIndex]uint32{}

	var groups []*objGroup
	byMaterial := map[string]*objGroup{}
	cur := (*objGroup)(nil)
	selectGroup := func(material string) {
		if g, ok := byMaterial[material]; ok {
			cur = g
			return
		}
		cur = &objGroup{material: material}
		byMaterial[material] = cur
		groups = append(groups, cur)
	}

	vertex := func(k objIndex) uint32 {
		if idx, ok := vertMap[k]; ok {
			return idx
		}
		v := core.Vertex{Position: positions[k.v], Normal: math.Vec3Up}
		if k.vt >= 0 {
			v.UV = uvs[k.vt]
		}
		if k.vn >= 0 {
			v.Normal = normals[k.vn]
		}
		idx := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, v)
		vertMap[k] = idx
		return idx
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, math.Vec2{X: v[0], Y: v[1]})

		case "usemtl":
			material := ""
			if len(fields) > 1 {
				material = fields[1]
			}
			selectGroup(material)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			face := make([]objIndex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				k, err := parseFaceVertex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				face = append(face, k)
			}
			if cur == nil {
				selectGroup("")
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(face); i++ {
				cur.indices = append(cur.indices, vertex(face[0]), vertex(face[i]), vertex(face[i+1]))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	for _, g := range groups {
		if len(g.indices) == 0 {
			continue
		}
		subName := g.material
		if subName == "" {
			subName = name
		}
		mesh.Submeshes = append(mesh.Submeshes, SubmeshData{
			Name:      subName,
			Material:  g.material,
			Indices:   g.indices,
			Primitive: gpu.PrimitiveTriangle,
		})
	}
	if len(mesh.Submeshes) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", name)
	}

	if len(normals) == 0 {
		var all []uint32
		for _, s := range mesh.Submeshes {
			all = append(all, s.Indices...)
		}
		generateNormals(mesh.Vertices, all)
	}
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn" into 0-based
// indices, -1 when absent. Negative references count back from the end of
// the data read so far.
func parseFaceVertex(tok string, nv, nvt, nvn int) (objIndex, error) {
	parts := strings.Split(tok, "/")
	res := objIndex{v: -1, vt: -1, vn: -1}

	resolve := func(s string, count int) (int, error) {
		if s == "" {
			return -1, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("face index %q: %w", s, err)
		}
		idx := n - 1
		if n < 0 {
			idx = count + n
		}
		if n == 0 || idx < 0 || idx >= count {
			return 0, fmt.Errorf("face index %d out of range (have %d)", n, count)
		}
		return idx, nil
	}

	var err error
	if res.v, err = resolve(parts[0], nv); err != nil {
		return res, err
	}
	if res.v < 0 {
		return res, fmt.Errorf("face vertex %q has no position", tok)
	}
	if len(parts) > 1 {
		if res.vt, err = resolve(parts[1], nvt); err != nil {
			return res, err
		}
	}
	if len(parts) > 2 {
		if res.vn, err = resolve(parts[2], nvn); err != nil {
			return res, err
		}
	}
	return res, nil
}
