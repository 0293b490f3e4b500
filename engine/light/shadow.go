package light

// ShadowMapResolution is the default width and height in texels of the shadow
// depth texture. Scenes use this as their initial value but can override it
// via configuration.
const ShadowMapResolution = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// of the light's shadow frustum around the origin.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane of the light's orthographic projection.
// It is negative so casters behind the light's eye still land in the shadow map.
const DefaultShadowNear float32 = -50.0

// DefaultShadowFar is the default far plane of the light's orthographic projection.
const DefaultShadowFar float32 = 200.0

// DefaultOrbitRadius is the horizontal distance of the light from the Y axis.
const DefaultOrbitRadius float32 = 50.0

// DefaultHeight is the light's fixed height above the origin.
const DefaultHeight float32 = 100.0
