package locations

import (
	"errors"
	"log/slog"
)

// hydrator carries the per-route collaborators of a hydration.
type hydrator struct {
	codec  Codec
	logger *slog.Logger
}

func newHydrator(codec Codec, logger *slog.Logger) hydrator {
	if codec == nil {
		codec = JSONCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return hydrator{codec: codec, logger: logger}
}

// Hydrate builds an instance of loc from src. Per-field and body failures are
// recovered and leave defaults in place; only configuration errors are
// returned. A nil codec selects JSONCodec.
func Hydrate[T any](loc *Location[T], src *Sources, codec Codec) (*T, error) {
	plan, err := Describe(loc)
	if err != nil {
		return nil, err
	}
	return plan.hydrate(src, newHydrator(codec, nil)), nil
}

func (p *Plan[T]) hydrate(src *Sources, h hydrator) *T {
	if p.singleton != nil {
		return p.singleton
	}

	loc := p.location
	var inst *T
	if loc.bodyBound {
		inst = p.decodeBody(src, h)
	} else {
		inst = loc.newInstance()
	}

	if p.contextAware && src.request != nil {
		any(inst).(ContextAware).AttachRequest(src.request)
	}
	if p.socketAware && src.socket != nil {
		any(inst).(SocketContextAware).AttachSocket(src.socket)
	}

	for i := range p.fields {
		p.hydrateField(inst, &p.fields[i], src, h)
	}
	return inst
}

// decodeBody constructs the instance from the body, falling back to a fresh
// default when the body is missing or malformed.
func (p *Plan[T]) decodeBody(src *Sources, h hydrator) *T {
	loc := p.location
	body, err := src.Body()
	if err == nil && len(body) == 0 {
		return loc.newInstance()
	}
	if err == nil {
		inst := loc.newInstance()
		if err = h.codec.Decode(body, inst); err == nil {
			return inst
		}
	}
	h.logger.Debug("body decode failed, using default instance",
		"location", loc.Name(),
		"error", newError(DecodeErrorCode, loc.Name(), "", err, "decode body"))
	return loc.newInstance()
}

func (p *Plan[T]) hydrateField(inst *T, f *FieldBinding[T], src *Sources, h hydrator) {
	if f.kind == NestedField {
		f.nested(inst, src, h)
		return
	}

	if len(f.bindings) > 0 {
		for _, b := range f.bindings {
			if b.Source == SourceBody {
				raw, ok := src.bodyMember(b.Key, h.codec)
				if !ok {
					continue
				}
				if err := f.decode(inst, raw, h.codec); err != nil {
					p.fieldFailed(h, f, b.Source, err)
				}
				return
			}
			values, ok := src.lookup(b.Source, b.Key)
			if !ok {
				continue
			}
			p.coerceInto(inst, f, b.Source, values, h)
			return
		}
		return
	}

	if !p.location.eager {
		return
	}
	if values, ok := src.mergedBundle(p.location.sources)[f.name]; ok {
		p.coerceInto(inst, f, p.location.sources, values, h)
	}
}

func (p *Plan[T]) coerceInto(inst *T, f *FieldBinding[T], source Source, values []string, h hydrator) {
	value, err := Coerce(values, f.target)
	if err != nil {
		p.fieldFailed(h, f, source, err)
		return
	}
	f.set(inst, value)
}

func (p *Plan[T]) fieldFailed(h hydrator, f *FieldBinding[T], source Source, err error) {
	code := HydrationErrorCode
	if errors.Is(err, ErrUnsupportedType) {
		code = UnsupportedTypeErrorCode
	}
	h.logger.Debug("field left at default",
		"location", p.location.Name(),
		"field", f.name,
		"source", source.String(),
		"error", newError(code, p.location.Name(), f.name, err, "coerce"))
}
