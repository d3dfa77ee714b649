package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う（n×1 の行列を返す）
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// TreePredictor はアンサンブル内の一本の回帰木を表す。
// 学習済みの状態に対して決定的で、副作用を持たない。
type TreePredictor interface {
	// PredictRow は一行分の特徴量ベクトルに対する予測値を返す
	PredictRow(features []float64) float64
}

// Ensemble は木を育てる外部コラボレータが返す学習済みアンサンブル。
//
// Estimators の順序は学習順で固定され、ウォームスタート時も末尾への追加のみ許される。
type Ensemble interface {
	Predictor

	// Estimators は個々の木を学習順に返す
	Estimators() []TreePredictor

	// Criterion は木の分割に使われた基準名を返す（例: "squared_error"）
	Criterion() string

	// NFeatures は学習時の特徴量数を返す
	NFeatures() int
}

// UncertaintyPredictor は平均に加えて標準偏差を返せるモデル
type UncertaintyPredictor interface {
	Predictor

	// PredictWithStd は平均と標準偏差（どちらも n×1）を返す
	PredictWithStd(X mat.Matrix) (mean, std mat.Matrix, err error)
}
