package comment

// Errno is the closed set of outcomes every service operation reports.
// It is independent of any transport status code.
type Errno string

const (
	OK        Errno = "OK"
	DBERR     Errno = "DBERR"
	NOEXIST   Errno = "NOEXIST"
	DUPID     Errno = "DUPID"
	DUPTITLE  Errno = "DUPTITLE"
	BADPARAMS Errno = "BADPARAMS"
	// UN is reserved for the boundary layer's default case.
	UN Errno = "UN"
)

func (e Errno) String() string {
	return string(e)
}

// Result is the outcome envelope of a service call.
type Result struct {
	Errno Errno
	// Comments holds the rows of a read. Never nil when Errno is OK.
	Comments []Comment
	// ID is the identifier assigned by a successful create.
	ID int64
	// Detail carries the captured failure for DBERR and BADPARAMS.
	Detail error
}

// OK reports whether the operation completed as requested.
func (r Result) OK() bool {
	return r.Errno == OK
}

func newResult(errno Errno) Result {
	res := Result{Errno: errno}
	if errno == OK {
		res.Comments = []Comment{}
	}
	return res
}

func failed(errno Errno, detail error) Result {
	return Result{Errno: errno, Detail: detail}
}
