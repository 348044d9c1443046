package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/texture"

	"github.com/cogentcore/webgpu/wgpu"
	"gopkg.in/yaml.v3"
)

// Report summarizes one loaded scene.
type Report struct {
	Path      string           `json:"path" yaml:"path"`
	Scene     string           `json:"scene" yaml:"scene"`
	Nodes     int              `json:"nodes" yaml:"nodes"`
	Roots     []int            `json:"roots" yaml:"roots"`
	Meshes    []MeshReport     `json:"meshes" yaml:"meshes"`
	Arenas    map[string]int   `json:"arenas" yaml:"arenas"`
	Materials []MaterialReport `json:"materials" yaml:"materials"`
	Images    []ImageReport    `json:"images" yaml:"images"`
	Samplers  int              `json:"samplers" yaml:"samplers"`
	Bounds    *BoundsReport    `json:"bounds,omitempty" yaml:"bounds,omitempty"`
}

// BoundsReport is the world-space extent of a scene.
type BoundsReport struct {
	Min    [3]float32 `json:"min" yaml:"min"`
	Max    [3]float32 `json:"max" yaml:"max"`
	Radius float32    `json:"radius" yaml:"radius"`
}

// MeshReport summarizes one flattened primitive.
type MeshReport struct {
	Node       int    `json:"node" yaml:"node"`
	Mesh       int    `json:"mesh" yaml:"mesh"`
	Primitive  int    `json:"primitive" yaml:"primitive"`
	Mode       string `json:"mode" yaml:"mode"`
	Vertices   int    `json:"vertices" yaml:"vertices"`
	Indices    int    `json:"indices" yaml:"indices"`
	Normals    bool   `json:"normals" yaml:"normals"`
	UV0        bool   `json:"uv0" yaml:"uv0"`
	Tangents   bool   `json:"tangents" yaml:"tangents"`
	BiTangents bool   `json:"bitangents" yaml:"bitangents"`
	Material   *int   `json:"material,omitempty" yaml:"material,omitempty"`
}

// MaterialReport summarizes one material's slots.
type MaterialReport struct {
	Name        string         `json:"name" yaml:"name"`
	AlphaMode   string         `json:"alphaMode" yaml:"alphaMode"`
	DoubleSided bool           `json:"doubleSided" yaml:"doubleSided"`
	Textures    map[string]int `json:"textures,omitempty" yaml:"textures,omitempty"`
}

// ImageReport summarizes one extracted image.
type ImageReport struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Source      string `json:"source" yaml:"source"`
	Mime        string `json:"mime" yaml:"mime"`
	Bytes       int    `json:"bytes" yaml:"bytes"`
	Linear      bool   `json:"linear" yaml:"linear"`
	Width       uint32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height      uint32 `json:"height,omitempty" yaml:"height,omitempty"`
	DecodeError string `json:"decodeError,omitempty" yaml:"decodeError,omitempty"`
}

// BuildReport summarizes a loaded scene. With decode set every image is decoded as well;
// decode failures are recorded on the image rather than failing the report.
//
// Parameters:
//   - path: the file the scene was loaded from
//   - scene: the loaded scene
//   - decode: true to decode images
//
// Returns:
//   - Report: the summary
func BuildReport(path string, scene *loader.Scene, decode bool) Report {
	view, buffers := scene.View, scene.Buffers

	r := Report{
		Path:     path,
		Scene:    view.Name,
		Nodes:    len(view.Nodes),
		Roots:    view.Roots,
		Samplers: len(view.Samplers),
		Arenas: map[string]int{
			"positions":  buffers.Positions.Len(),
			"normals":    buffers.Normals.Len(),
			"tangents":   buffers.Tangents.Len(),
			"bitangents": buffers.BiTangents.Len(),
			"indices":    buffers.Indices.Len(),
			"shared":     buffers.Shared.Len(),
		},
	}
	if box := view.Bounds(buffers); !box.IsEmpty() {
		r.Bounds = &BoundsReport{Min: box.Min, Max: box.Max, Radius: box.Radius()}
	}
	for i, tc := range buffers.TexCoords {
		r.Arenas[fmt.Sprintf("texcoord%d", i)] = tc.Len()
	}

	for _, id := range view.NodeIDs() {
		node := view.Nodes[id]
		for _, m := range node.Meshes {
			r.Meshes = append(r.Meshes, MeshReport{
				Node:       node.ID,
				Mesh:       m.ID,
				Primitive:  m.Primitive,
				Mode:       m.Mode.String(),
				Vertices:   m.VertexCount,
				Indices:    m.Index.Count,
				Normals:    m.Normals != nil,
				UV0:        m.UV0 != nil,
				Tangents:   m.Tangents != nil,
				BiTangents: m.BiTangents != nil,
				Material:   m.Material,
			})
		}
	}

	for i := range view.Materials {
		mat := &view.Materials[i]
		mr := MaterialReport{
			Name:        mat.Name,
			AlphaMode:   mat.AlphaMode.String(),
			DoubleSided: mat.DoubleSided,
		}
		for _, key := range mat.Keys() {
			if td := mat.Textures[key]; td.ImageID != nil {
				if mr.Textures == nil {
					mr.Textures = make(map[string]int)
				}
				mr.Textures[key.String()] = *td.ImageID
			}
		}
		r.Materials = append(r.Materials, mr)
	}

	for i, img := range view.Images {
		ir := ImageReport{
			Name:   img.Name,
			Source: img.Source.String(),
			Mime:   img.MimeType,
			Bytes:  img.Range.Len(),
			Linear: img.TargetFormat == wgpu.TextureFormatRGBA8Unorm,
		}
		if decode {
			staging, err := texture.Decode(scene, i)
			if err != nil {
				ir.DecodeError = err.Error()
			} else {
				ir.Width, ir.Height = staging.Width, staging.Height
			}
		}
		r.Images = append(r.Images, ir)
	}
	return r
}

// WriteReports renders reports in the given format.
//
// Parameters:
//   - w: the destination
//   - format: text, json or yaml
//   - reports: the reports to render
//
// Returns:
//   - error: error if encoding or writing fails
func WriteReports(w io.Writer, format string, reports []Report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, reports)
	}
}

func writeText(w io.Writer, reports []Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\tscene %q\t%d nodes\t%d materials\t%d images\t%d samplers\n",
			r.Path, r.Scene, r.Nodes, len(r.Materials), len(r.Images), r.Samplers)
		if b := r.Bounds; b != nil {
			fmt.Fprintf(tw, "  bounds\t%v .. %v\tradius %.3f\n", b.Min, b.Max, b.Radius)
		}
		for _, m := range r.Meshes {
			fmt.Fprintf(tw, "  node %d\tmesh %d/%d\t%s\t%d verts\t%d indices\n",
				m.Node, m.Mesh, m.Primitive, m.Mode, m.Vertices, m.Indices)
		}
		for i, img := range r.Images {
			fmt.Fprintf(tw, "  image %d\t%s\t%s\t%d bytes", i, img.Source, img.Mime, img.Bytes)
			if img.Width > 0 {
				fmt.Fprintf(tw, "\t%dx%d", img.Width, img.Height)
			}
			if img.DecodeError != "" {
				fmt.Fprintf(tw, "\t%s", img.DecodeError)
			}
			fmt.Fprintln(tw)
		}
	}
	return tw.Flush()
}
