// Package metrics はサロゲートモデルの当てはまりを評価する回帰指標を提供する。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// pair は二つの列ベクトルを検証し、スライスとして取り出す
func pair(op string, yTrue, yPred mat.Matrix) ([]float64, []float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return nil, nil, errors.NewValueError(op, "empty vector")
	}
	if cTrue != 1 || cPred != 1 {
		return nil, nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	if rPred != rTrue {
		return nil, nil, errors.NewShapeMismatchError(op, rTrue, rPred, 0)
	}

	t := mat.Col(nil, 0, yTrue)
	p := mat.Col(nil, 0, yPred)
	return t, p, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
// mat.VecDense も n×1 の mat.Matrix として渡せる。
func MSE(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := pair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MSE = (1/n) * ||yTrue - yPred||²
	d := floats.Distance(t, p, 2)
	return d * d / float64(len(t)), nil
}

// RMSE は平均二乗誤差の平方根を計算する
func RMSE(yTrue, yPred mat.Matrix) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, errors.Wrap(err, "RMSE")
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := pair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Distance(t, p, 1) / float64(len(t)), nil
}

// R2Score は決定係数（R²）を計算する
//
// yTrue の分散が 0 の場合、R² は定義できないためエラーを返す。
func R2Score(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := pair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := stat.Mean(t, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss float64
	for _, v := range t {
		tss += (v - yMean) * (v - yMean)
	}
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	d := floats.Distance(t, p, 2)

	return 1 - d*d/tss, nil
}
