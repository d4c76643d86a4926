package renderer

import (
	"github.com/richinsley/goshaderdemo/params"
	"github.com/richinsley/goshaderdemo/target"
)

// blitMaterial is the material of the screen quad.
type blitMaterial struct {
	program uint32
}

func (m *blitMaterial) Name() string {
	return "blit"
}

// screenMesh is the full-screen quad Present draws. Its material instance
// decides which render target is shown.
type screenMesh struct {
	material target.Material
	bound    params.RenderTarget
}

func (s *screenMesh) SetMaterial(slot int, m target.Material) {
	if slot == 0 {
		s.material = m
		s.bound = nil
	}
}

func (s *screenMesh) CreateDynamicMaterialInstance(slot int) target.MaterialInstance {
	if slot != 0 || s.material == nil {
		return nil
	}
	return &screenInstance{mesh: s}
}

type screenInstance struct {
	mesh *screenMesh
}

func (i *screenInstance) SetTextureParameter(name string, rt params.RenderTarget) {
	if name == target.TextureParameter {
		i.mesh.bound = rt
	}
}

// MeshComponents exposes the screen quad so a render target can be bound to
// it with target.Apply.
func (r *Renderer) MeshComponents() []target.MeshComponent {
	return []target.MeshComponent{r.screen}
}

// BlitMaterial is the material to apply to the screen quad.
func (r *Renderer) BlitMaterial() target.Material {
	return r.blit
}

var _ target.Actor = (*Renderer)(nil)
