package exceptions

import (
	"errors"
	"fmt"
	goRuntime "runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

const maxStackDepth = 32

// Exception is the error value raised by the object runtime.
type Exception struct {
	kind    Kind
	message string
	inner   error
	stack   []uintptr

	paramName   string
	actualValue any
	hasActual   bool

	// native is the wrapped host error of an ErrorException.
	native error
	// inners holds the causes of an aggregate, combined with multierr.
	inners error

	dataMu sync.Mutex
	data   map[string]any
}

func newException(kind Kind, message string, inner error) *Exception {
	if message == "" {
		message = kind.DefaultMessage()
	}
	pcs := make([]uintptr, maxStackDepth)
	n := goRuntime.Callers(3, pcs)
	return &Exception{kind: kind, message: message, inner: inner, stack: pcs[:n]}
}

// New builds a base exception.
func New(message string, inner error) *Exception {
	return newException(KindException, message, inner)
}

// NewOfKind builds an exception of an arbitrary kind, including kinds added
// with DefineKind.
func NewOfKind(kind Kind, message string, inner error) *Exception {
	if !kind.Known() {
		kind = KindException
	}
	return newException(kind, message, inner)
}

func NewArgument(message, paramName string, inner error) *Exception {
	e := newException(KindArgument, message, inner)
	e.paramName = paramName
	return e
}

// NewArgumentNull appends the parameter line to the default message when no
// message is given.
func NewArgumentNull(paramName, message string, inner error) *Exception {
	if message == "" {
		message = withParamName(KindArgumentNull.DefaultMessage(), paramName)
	}
	e := newException(KindArgumentNull, message, inner)
	e.paramName = paramName
	return e
}

func NewArgumentOutOfRange(paramName, message string, inner error, actualValue any) *Exception {
	if message == "" {
		message = withParamName(KindArgumentOutOfRange.DefaultMessage(), paramName)
	}
	e := newException(KindArgumentOutOfRange, message, inner)
	e.paramName = paramName
	e.actualValue = actualValue
	e.hasActual = actualValue != nil
	return e
}

func NewKeyNotFound(message string, inner error) *Exception {
	return newException(KindKeyNotFound, message, inner)
}

func NewDivideByZero(message string, inner error) *Exception {
	return newException(KindDivideByZero, message, inner)
}

func NewFormat(message string, inner error) *Exception {
	return newException(KindFormat, message, inner)
}

func NewInvalidCast(message string, inner error) *Exception {
	return newException(KindInvalidCast, message, inner)
}

func NewInvalidOperation(message string, inner error) *Exception {
	return newException(KindInvalidOperation, message, inner)
}

func NewOperationCanceled(message string, inner error) *Exception {
	return newException(KindOperationCanceled, message, inner)
}

func NewNotImplemented(message string, inner error) *Exception {
	return newException(KindNotImplemented, message, inner)
}

func NewNotSupported(message string, inner error) *Exception {
	return newException(KindNotSupported, message, inner)
}

func NewNullReference(message string, inner error) *Exception {
	return newException(KindNullReference, message, inner)
}

// Wrap turns a host error into an ErrorException that keeps the original
// error reachable through Unwrap and NativeError.
func Wrap(native error) *Exception {
	message := ""
	if native != nil {
		message = native.Error()
	}
	e := newException(KindError, message, nil)
	e.native = native
	return e
}

// NewAggregate collects several failures into one exception. Nil entries are
// dropped.
func NewAggregate(message string, errs ...error) *Exception {
	combined := multierr.Combine(errs...)
	e := newException(KindAggregate, message, nil)
	e.inners = combined
	if list := multierr.Errors(combined); len(list) > 0 {
		e.inner = list[0]
	}
	return e
}

func withParamName(message, paramName string) string {
	if paramName == "" {
		return message
	}
	return message + "\nParameter name: " + paramName
}

func (e *Exception) Kind() Kind { return e.kind }

func (e *Exception) Message() string { return e.message }

func (e *Exception) Error() string { return e.message }

// String renders the kind and message, followed by the inner exception chain.
func (e *Exception) String() string {
	var b strings.Builder
	b.WriteString(string(e.kind))
	b.WriteString(": ")
	b.WriteString(e.message)
	if e.inner != nil {
		b.WriteString(" ---> ")
		if inner, ok := e.inner.(*Exception); ok {
			b.WriteString(inner.String())
		} else {
			b.WriteString(e.inner.Error())
		}
	}
	return b.String()
}

func (e *Exception) InnerException() error { return e.inner }

// NativeError returns the host error wrapped by an ErrorException.
func (e *Exception) NativeError() error { return e.native }

func (e *Exception) ParamName() string { return e.paramName }

// ActualValue returns the offending value of an out-of-range failure.
func (e *Exception) ActualValue() (any, bool) { return e.actualValue, e.hasActual }

// InnerExceptions lists the causes of an aggregate; other kinds report their
// single inner exception, if any.
func (e *Exception) InnerExceptions() []error {
	if e.inners != nil {
		return multierr.Errors(e.inners)
	}
	if e.inner != nil {
		return []error{e.inner}
	}
	return nil
}

// Unwrap exposes the cause chain to errors.Is and errors.As.
func (e *Exception) Unwrap() []error {
	switch {
	case e.inners != nil:
		return multierr.Errors(e.inners)
	case e.native != nil:
		return []error{e.native}
	case e.inner != nil:
		return []error{e.inner}
	}
	return nil
}

// StackTrace formats the call stack captured when the exception was built.
func (e *Exception) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}
	frames := goRuntime.CallersFrames(e.stack)
	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "   at %s (%s:%d)\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// SetData stores a value in the exception's data bag.
func (e *Exception) SetData(key string, value any) {
	e.dataMu.Lock()
	defer e.dataMu.Unlock()
	if e.data == nil {
		e.data = make(map[string]any)
	}
	e.data[key] = value
}

func (e *Exception) Data(key string) (any, bool) {
	e.dataMu.Lock()
	defer e.dataMu.Unlock()
	v, ok := e.data[key]
	return v, ok
}

// DataKeys returns the data bag keys in sorted order.
func (e *Exception) DataKeys() []string {
	e.dataMu.Lock()
	defer e.dataMu.Unlock()
	keys := make([]string, 0, len(e.data))
	for k := range e.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// As finds the outermost exception in err's chain.
func As(err error) (*Exception, bool) {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex, true
	}
	return nil, false
}

// Is reports whether the outermost exception in err's chain is of kind or of
// one of its descendants.
func Is(err error, kind Kind) bool {
	ex, ok := As(err)
	if !ok {
		return false
	}
	return ex.kind.InheritsFrom(kind)
}
