package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrUnknownNode indicates a node handle that does not belong to this graph.
var ErrUnknownNode = errors.New("node does not belong to this graph")

// MemoryGraph is an in-memory scene graph implementing Graph. It stands in
// for the platform scene graph in tests and in the gesture-replay tool.
// Nodes store local transforms; world transforms are composed through the
// parent chain on demand.
type MemoryGraph struct {
	mu    sync.Mutex
	nodes map[string]*memoryNode
}

type memoryNode struct {
	id       string
	name     string
	parent   *memoryNode
	rotation mgl64.Quat // local
	position mgl64.Vec3 // local
}

func (n *memoryNode) ID() string { return n.id }

// NewMemoryGraph creates an empty graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{nodes: make(map[string]*memoryNode)}
}

// NewNode creates a node parented under parent (nil for a root node).
func (g *MemoryGraph) NewNode(name string, parent Node) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var p *memoryNode
	if parent != nil {
		var err error
		p, err = g.lookup(parent)
		if err != nil {
			return nil, err
		}
	}

	n := &memoryNode{
		id:       uuid.NewString(),
		name:     name,
		parent:   p,
		rotation: mgl64.QuatIdent(),
	}
	g.nodes[n.id] = n
	return n, nil
}

// NewRig builds the standard pitch → yaw → model chain at identity and
// returns it together with the graph mutations already applied. This mirrors
// what a host does once at model load; the driver itself never parents
// nodes.
func (g *MemoryGraph) NewRig() (Rig, error) {
	pitch, err := g.NewNode("pitch", nil)
	if err != nil {
		return Rig{}, err
	}
	yaw, err := g.NewNode("yaw", pitch)
	if err != nil {
		return Rig{}, err
	}
	model, err := g.NewNode("model", yaw)
	if err != nil {
		return Rig{}, err
	}
	return Rig{Pitch: pitch, Yaw: yaw, Model: model}, nil
}

// WorldOrientation returns the node's world-space orientation.
func (g *MemoryGraph) WorldOrientation(n Node) (mgl64.Quat, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	mn, err := g.lookup(n)
	if err != nil {
		return mgl64.Quat{}, err
	}
	return worldRotation(mn), nil
}

// SetWorldOrientation replaces the node's world-space orientation, solving
// for the local rotation against the parent chain.
func (g *MemoryGraph) SetWorldOrientation(n Node, q mgl64.Quat) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	mn, err := g.lookup(n)
	if err != nil {
		return err
	}
	parentWorld := mgl64.QuatIdent()
	if mn.parent != nil {
		parentWorld = worldRotation(mn.parent)
	}
	mn.rotation = parentWorld.Inverse().Mul(q).Normalize()
	return nil
}

// WorldPosition returns the node's world-space position.
func (g *MemoryGraph) WorldPosition(n Node) (mgl64.Vec3, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	mn, err := g.lookup(n)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return worldPosition(mn), nil
}

// SetWorldPosition replaces the node's world-space position.
func (g *MemoryGraph) SetWorldPosition(n Node, p mgl64.Vec3) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	mn, err := g.lookup(n)
	if err != nil {
		return err
	}
	if mn.parent == nil {
		mn.position = p
		return nil
	}
	parentRot := worldRotation(mn.parent)
	parentPos := worldPosition(mn.parent)
	mn.position = parentRot.Inverse().Rotate(p.Sub(parentPos))
	return nil
}

// WorldDirectionToLocal converts a world-space direction into the node's
// local frame. Directions ignore translation.
func (g *MemoryGraph) WorldDirectionToLocal(n Node, v mgl64.Vec3) (mgl64.Vec3, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	mn, err := g.lookup(n)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return worldRotation(mn).Inverse().Rotate(v), nil
}

// LocalOrientation returns the node's local rotation; test helper.
func (g *MemoryGraph) LocalOrientation(n Node) (mgl64.Quat, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	mn, err := g.lookup(n)
	if err != nil {
		return mgl64.Quat{}, err
	}
	return mn.rotation, nil
}

func (g *MemoryGraph) lookup(n Node) (*memoryNode, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil handle", ErrUnknownNode)
	}
	mn, ok := g.nodes[n.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, n.ID())
	}
	return mn, nil
}

func worldRotation(n *memoryNode) mgl64.Quat {
	if n.parent == nil {
		return n.rotation
	}
	return worldRotation(n.parent).Mul(n.rotation).Normalize()
}

func worldPosition(n *memoryNode) mgl64.Vec3 {
	if n.parent == nil {
		return n.position
	}
	return worldPosition(n.parent).Add(worldRotation(n.parent).Rotate(n.position))
}
