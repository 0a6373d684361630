package report

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var classNames = []string{"Non-Regional", "Regional"}

// confusionGrid adapts a 2x2 confusion matrix to plotter.GridXYZ. Row 0
// (true label 0) is drawn at the top, matching the report orientation.
type confusionGrid struct {
	cm [2][2]int
}

func (g confusionGrid) Dims() (c, r int)   { return 2, 2 }
func (g confusionGrid) Z(c, r int) float64 { return float64(g.cm[1-r][c]) }
func (g confusionGrid) X(c int) float64    { return float64(c) }
func (g confusionGrid) Y(r int) float64    { return float64(r) }

// classTicker places one named tick per class position.
type classTicker struct {
	names map[float64]string
}

func (t classTicker) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for v, name := range t.names {
		if v >= min && v <= max {
			ticks = append(ticks, plot.Tick{Value: v, Label: name})
		}
	}
	return ticks
}

// confusionPlot renders the confusion matrix as an annotated heatmap.
func confusionPlot(cm [2][2]int, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "True"

	grid := confusionGrid{cm: cm}
	heat := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(heat)

	// Annotate each cell with its count.
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, 4),
		Labels: make([]string, 4),
	}
	i := 0
	for trueClass := 0; trueClass < 2; trueClass++ {
		for predClass := 0; predClass < 2; predClass++ {
			labels.XYs[i] = plotter.XY{X: float64(predClass), Y: float64(1 - trueClass)}
			labels.Labels[i] = fmt.Sprintf("%d", cm[trueClass][predClass])
			i++
		}
	}
	annot, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("confusion matrix labels: %w", err)
	}
	p.Add(annot)

	p.X.Tick.Marker = classTicker{names: map[float64]string{0: classNames[0], 1: classNames[1]}}
	p.Y.Tick.Marker = classTicker{names: map[float64]string{1: classNames[0], 0: classNames[1]}}
	return p, nil
}

// barPlot renders a two-category bar chart with value annotations.
func barPlot(title, yLabel string, names []string, values []float64, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("bar chart %q: %w", title, err)
	}
	bars.LineStyle.Width = 0
	bars.Color = c
	p.Add(bars)
	p.NominalX(names...)

	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(values)),
		Labels: make([]string, len(values)),
	}
	for i, v := range values {
		labels.XYs[i] = plotter.XY{X: float64(i), Y: v}
		labels.Labels[i] = fmt.Sprintf("%.4g", v)
	}
	annot, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("bar labels %q: %w", title, err)
	}
	p.Add(annot)
	return p, nil
}

// SaveConfusionMatrix writes the standalone confusion-matrix PNG.
func SaveConfusionMatrix(path string, cm [2][2]int, title string) error {
	p, err := confusionPlot(cm, title)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 5*vg.Inch, path)
}

// SaveSummary writes the four-panel summary PNG: confusion matrix, true
// class distribution, predicted class distribution, and accuracy/F1 bars.
func SaveSummary(path string, m Metrics, trueCounts, predCounts [2]int) error {
	cmPlot, err := confusionPlot(m.Confusion, "Confusion Matrix")
	if err != nil {
		return err
	}
	truePlot, err := barPlot("Test Set Class Distribution", "Number of Samples",
		classNames, []float64{float64(trueCounts[0]), float64(trueCounts[1])},
		color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff})
	if err != nil {
		return err
	}
	predPlot, err := barPlot("Model Predictions", "Number of Samples",
		classNames, []float64{float64(predCounts[0]), float64(predCounts[1])},
		color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff})
	if err != nil {
		return err
	}
	perfPlot, err := barPlot("Model Performance", "",
		[]string{"Accuracy", "F1 Score"}, []float64{m.Accuracy, m.F1},
		color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff})
	if err != nil {
		return err
	}
	perfPlot.Y.Max = 1.0

	plots := [][]*plot.Plot{
		{cmPlot, truePlot},
		{predPlot, perfPlot},
	}

	img := vgimg.New(12*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 2,
		PadX: vg.Points(10),
		PadY: vg.Points(10),
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		for col := range plots[row] {
			plots[row][col].Draw(canvases[row][col])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return err
	}
	return nil
}
