package musclearm

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Parameter names recognized by Configure.
const (
	SegmentLengths    = "segmentLengths"
	JointAngles       = "jointAngles"
	ElbowOffset       = "elbowOffset"
	AttachmentOffsets = "attachmentOffsets"
	Stress            = "stress"
	StrainDelta       = "strainDelta"
	Name              = "name"
)

// Update is a single named parameter change.
type Update struct {
	Name  string
	Value interface{}
}

// Set is shorthand for Update{Name: name, Value: value}.
func Set(name string, value interface{}) Update {
	return Update{Name: name, Value: value}
}

// UnknownParameterError reports an update naming a parameter that
// does not exist.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}

// Is makes the error match ErrUnknownParameter.
func (e *UnknownParameterError) Is(target error) bool {
	return target == ErrUnknownParameter
}

// ShapeMismatchError reports a value of the wrong type or arity for
// its parameter.
type ShapeMismatchError struct {
	Name string
	Want string
	Got  interface{}
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q: want %s, got %T %v", e.Name, e.Want, e.Got, e.Got)
}

// Is makes the error match ErrShapeMismatch.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// Expected value shapes, as reported by ShapeMismatchError.
const (
	shapePair   = "2 numbers"
	shapeScalar = "a number"
	shapeMatrix = "2x2 numbers (rows proximal/distal, columns biceps/triceps)"
	shapeString = "a string"
)

// scalar converts any Go numeric value into a float64.
func scalar(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// vector converts an array or slice of exactly n numbers.
func vector(v interface{}, n int) ([]float64, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	if rv.Len() != n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		f, ok := scalar(rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func pair(v interface{}) ([2]float64, bool) {
	var out [2]float64
	xs, ok := vector(v, 2)
	if !ok {
		return out, false
	}
	copy(out[:], xs)
	return out, true
}

// matrix accepts a 2x2 nested value or a flat row-major 4-vector.
func matrix(v interface{}) ([2][2]float64, bool) {
	var out [2][2]float64
	if xs, ok := vector(v, 4); ok {
		out[0] = [2]float64{xs[0], xs[1]}
		out[1] = [2]float64{xs[2], xs[3]}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); (k != reflect.Slice && k != reflect.Array) || rv.Len() != 2 {
		return out, false
	}
	for i := range out {
		row, ok := pair(rv.Index(i).Interface())
		if !ok {
			return out, false
		}
		out[i] = row
	}
	return out, true
}

// apply returns p and name with every update applied in order. No
// input is modified, so a failure leaves the caller's state intact.
func apply(p Params, name string, updates []Update) (Params, string, error) {
	for _, u := range updates {
		bad := func(want string) error {
			return &ShapeMismatchError{Name: u.Name, Want: want, Got: u.Value}
		}
		switch u.Name {
		case SegmentLengths:
			v, ok := pair(u.Value)
			if !ok {
				return p, name, bad(shapePair)
			}
			p.Lengths = v
		case JointAngles:
			v, ok := pair(u.Value)
			if !ok {
				return p, name, bad(shapePair)
			}
			p.Angles = v
		case ElbowOffset:
			v, ok := scalar(u.Value)
			if !ok {
				return p, name, bad(shapeScalar)
			}
			p.ElbowOffset = v
		case AttachmentOffsets:
			v, ok := matrix(u.Value)
			if !ok {
				return p, name, bad(shapeMatrix)
			}
			p.Attachments = v
		case Stress:
			v, ok := pair(u.Value)
			if !ok {
				return p, name, bad(shapePair)
			}
			p.Stress = v
		case StrainDelta:
			v, ok := pair(u.Value)
			if !ok {
				return p, name, bad(shapePair)
			}
			p.StrainDelta = v
		case Name:
			v, ok := u.Value.(string)
			if !ok {
				return p, name, bad(shapeString)
			}
			name = v
		default:
			return p, name, &UnknownParameterError{Name: u.Name}
		}
	}
	return p, name, nil
}

// Configure applies updates in order, later updates to the same
// parameter winning, and then redraws the figure. Either every update
// is applied or, on an *UnknownParameterError or *ShapeMismatchError,
// none is. A renderer failure is returned after the new parameters
// have taken effect.
func (a *Arm) Configure(updates ...Update) error {
	if a.closed {
		return ErrClosed
	}
	p, name, err := apply(a.p, a.name, updates)
	if err != nil {
		a.log.Debug("configure rejected", zap.Error(err))
		return err
	}
	for _, u := range updates {
		if u.Name == Name {
			a.label = ""
			break
		}
	}
	a.p, a.name = p, name
	return a.push()
}
