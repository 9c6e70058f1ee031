package image

import (
	"fmt"
	"strings"
)

// TensorShape describes how the tensor elements of a pixel are laid out.
type TensorShape int

// Supported tensor shapes.
const (
	ColVector TensorShape = iota
	RowVector
	ColMajorMatrix
	RowMajorMatrix
	DiagonalMatrix
	SymmetricMatrix
	UpperTriangularMatrix
	LowerTriangularMatrix
)

var tensorShapeNames = [...]string{
	ColVector:             "column vector",
	RowVector:             "row vector",
	ColMajorMatrix:        "column-major matrix",
	RowMajorMatrix:        "row-major matrix",
	DiagonalMatrix:        "diagonal matrix",
	SymmetricMatrix:       "symmetric matrix",
	UpperTriangularMatrix: "upper triangular matrix",
	LowerTriangularMatrix: "lower triangular matrix",
}

// String returns the name of the tensor shape.
func (s TensorShape) String() string {
	if s < 0 || int(s) >= len(tensorShapeNames) {
		return "unknown"
	}
	return tensorShapeNames[s]
}

// ParseTensorShape converts a tensor shape name to a TensorShape.
func ParseTensorShape(name string) (TensorShape, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range tensorShapeNames {
		if s == n {
			return TensorShape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTensorTag, name)
}

// Tensor is the per-pixel shape of an image: a scalar, vector or matrix.
type Tensor struct {
	shape    TensorShape
	elements int
	rows     int
}

// ScalarTensor returns the tensor of a scalar image.
func ScalarTensor() Tensor {
	return Tensor{shape: ColVector, elements: 1, rows: 1}
}

// VectorTensor returns a column vector tensor with n elements.
func VectorTensor(n int) Tensor {
	return Tensor{shape: ColVector, elements: n, rows: n}
}

// MatrixTensor returns a column-major rows x cols matrix tensor.
func MatrixTensor(rows, cols int) Tensor {
	switch {
	case cols == 1:
		return VectorTensor(rows)
	case rows == 1:
		return Tensor{shape: RowVector, elements: cols, rows: 1}
	default:
		return Tensor{shape: ColMajorMatrix, elements: rows * cols, rows: rows}
	}
}

// NewTensor builds a tensor of the given shape. Diagonal, symmetric and
// triangular shapes must be square.
func NewTensor(shape TensorShape, rows, cols int) (Tensor, error) {
	if rows < 1 || cols < 1 {
		return Tensor{}, geometryErr(ErrShapeMismatch, -1, "tensor sizes must be positive, got %dx%d", rows, cols)
	}
	switch shape {
	case ColVector:
		if cols != 1 {
			return Tensor{}, geometryErr(ErrShapeMismatch, -1, "column vector must have one column, got %d", cols)
		}
		return VectorTensor(rows), nil
	case RowVector:
		if rows != 1 {
			return Tensor{}, geometryErr(ErrShapeMismatch, -1, "row vector must have one row, got %d", rows)
		}
		return Tensor{shape: RowVector, elements: cols, rows: 1}, nil
	case ColMajorMatrix, RowMajorMatrix:
		return Tensor{shape: shape, elements: rows * cols, rows: rows}, nil
	case DiagonalMatrix, SymmetricMatrix, UpperTriangularMatrix, LowerTriangularMatrix:
		if rows != cols {
			return Tensor{}, geometryErr(ErrShapeMismatch, -1, "%s must be square, got %dx%d", shape, rows, cols)
		}
		n := rows
		if shape == DiagonalMatrix {
			return Tensor{shape: shape, elements: n, rows: n}, nil
		}
		return Tensor{shape: shape, elements: n * (n + 1) / 2, rows: n}, nil
	default:
		return Tensor{}, fmt.Errorf("%w: %d", ErrUnknownTensorTag, shape)
	}
}

// Shape returns the tensor shape tag.
func (t Tensor) Shape() TensorShape { return t.shape }

// Elements returns the number of stored tensor elements.
func (t Tensor) Elements() int {
	if t.elements == 0 {
		return 1
	}
	return t.elements
}

// Rows returns the number of tensor rows.
func (t Tensor) Rows() int {
	if t.rows == 0 {
		return 1
	}
	return t.rows
}

// Columns returns the number of tensor columns.
func (t Tensor) Columns() int {
	switch t.shape {
	case ColVector:
		return 1
	case RowVector:
		return t.Elements()
	case ColMajorMatrix, RowMajorMatrix:
		return t.Elements() / t.Rows()
	default:
		return t.Rows()
	}
}

// IsScalar reports whether the tensor has a single element.
func (t Tensor) IsScalar() bool { return t.Elements() == 1 }

// IsVector reports whether the tensor is a row or column vector.
func (t Tensor) IsVector() bool {
	return !t.IsScalar() && (t.shape == ColVector || t.shape == RowVector)
}

// Reshape returns a full rows x cols matrix (or vector) with the same
// number of elements as t.
func (t Tensor) Reshape(rows, cols int) (Tensor, error) {
	if rows < 1 || cols < 1 || rows*cols != t.Elements() {
		return Tensor{}, geometryErr(ErrShapeMismatch, -1,
			"cannot reshape %d tensor elements into %dx%d", t.Elements(), rows, cols)
	}
	return MatrixTensor(rows, cols), nil
}

// String returns a compact description such as "3x1 column vector".
func (t Tensor) String() string {
	if t.IsScalar() {
		return "scalar"
	}
	return fmt.Sprintf("%dx%d %s", t.Rows(), t.Columns(), t.shape)
}
