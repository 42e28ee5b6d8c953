package generic

// Void is a zero-size placeholder type, e.g. for Result[Void] or set membership.
type Void struct{}

func NewVoid() Void {
	return Void{}
}
