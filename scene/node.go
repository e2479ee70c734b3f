package scene

import (
	"errors"

	"orbit-renderer/gpu"
	"orbit-renderer/math"
)

var (
	ErrNilNode         = errors.New("scene: nil node")
	ErrCycle           = errors.New("scene: child is the node itself or one of its ancestors")
	ErrAlreadyParented = errors.New("scene: child already has a parent")
)

// Node is one element of the scene graph. Children are owned by their
// parent and visited in insertion order; Parent is a back-reference only.
type Node struct {
	Name           string
	Parent         *Node
	Children       []*Node
	LocalTransform math.Mat4
	Mesh           *gpu.Mesh
	Material       Material
}

func NewNode(name string) *Node {
	return &Node{
		Name:           name,
		Children:       make([]*Node, 0),
		LocalTransform: math.Mat4Identity(),
		Material:       DefaultMaterial(),
	}
}

// AddChild appends child and sets its parent. The tree stays acyclic: a nil
// child, the node itself, one of its ancestors, or a node that already
// belongs to another parent are rejected.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	for a := n; a != nil; a = a.Parent {
		if a == child {
			return ErrCycle
		}
	}
	if child.Parent != nil {
		return ErrAlreadyParented
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	return nil
}

// FindByNameRecursive returns the first pre-order match for name in the
// subtree rooted at n, or nil.
func (n *Node) FindByNameRecursive(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindByNameRecursive(name); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits the subtree in pre-order.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Drawable is the payload a node needs to produce draw calls.
type Drawable struct {
	Mesh    *gpu.Mesh
	Texture gpu.Texture
}

// Drawable reports the node's payload. Nodes missing either a mesh or a
// base colour texture are pure grouping nodes.
func (n *Node) Drawable() (Drawable, bool) {
	if n.Mesh == nil || n.Material.BaseColorTexture == nil {
		return Drawable{}, false
	}
	return Drawable{Mesh: n.Mesh, Texture: n.Material.BaseColorTexture}, true
}

// SetDrawable attaches a mesh and its base colour texture together.
func (n *Node) SetDrawable(mesh *gpu.Mesh, texture gpu.Texture) {
	n.Mesh = mesh
	n.Material.BaseColorTexture = texture
}
