package pptx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/ooxmark/model"
)

// Chart parts (ppt/charts/chartN.xml) cache the plotted data alongside the
// worksheet reference that produced it. Only the caches are read here; the
// referenced workbook may not even be embedded.

type chartSpaceXML struct {
	XMLName xml.Name `xml:"chartSpace"`
	Chart   struct {
		Title *struct {
			Tx struct {
				Rich struct {
					Paragraphs []aParXML `xml:"p"`
				} `xml:"rich"`
			} `xml:"tx"`
		} `xml:"title"`
		PlotArea chartPlotAreaXML `xml:"plotArea"`
	} `xml:"chart"`
}

// chartPlotAreaXML absorbs every plot kind (barChart, lineChart, pieChart,
// and the rest) the same way: each may hold c:ser children. Axis elements
// match too but carry no series.
type chartPlotAreaXML struct {
	Plots []struct {
		XMLName xml.Name
		Series  []chartSerXML `xml:"ser"`
	} `xml:",any"`
}

type chartSerXML struct {
	Tx struct {
		StrRef *chartRefXML `xml:"strRef"`
		V      string       `xml:"v"`
	} `xml:"tx"`
	Cat struct {
		StrRef *chartRefXML `xml:"strRef"`
		NumRef *chartRefXML `xml:"numRef"`
	} `xml:"cat"`
	Val struct {
		NumRef *chartRefXML `xml:"numRef"`
	} `xml:"val"`
}

type chartRefXML struct {
	StrCache *chartCacheXML `xml:"strCache"`
	NumCache *chartCacheXML `xml:"numCache"`
}

type chartCacheXML struct {
	Pts []struct {
		Idx string `xml:"idx,attr"`
		V   string `xml:"v"`
	} `xml:"pt"`
}

// points returns the cached values in idx order, whichever cache is present.
func (r *chartRefXML) points() []string {
	if r == nil {
		return nil
	}
	cache := r.StrCache
	if cache == nil {
		cache = r.NumCache
	}
	if cache == nil {
		return nil
	}
	out := make([]string, 0, len(cache.Pts))
	for _, pt := range cache.Pts {
		if idx, err := strconv.Atoi(pt.Idx); err == nil && idx >= 0 {
			for len(out) <= idx {
				out = append(out, "")
			}
			out[idx] = pt.V
			continue
		}
		out = append(out, pt.V)
	}
	return out
}

type chartSeries struct {
	name   string
	values []float64
}

type chartData struct {
	title      string
	categories []string
	series     []chartSeries
}

// newChartData extracts the cached categories and series from a chart part.
// Categories come from the first series carrying any.
func newChartData(cs *chartSpaceXML) *chartData {
	cd := &chartData{title: chartTitle(cs)}
	for _, plot := range cs.Chart.PlotArea.Plots {
		for i := range plot.Series {
			ser := &plot.Series[i]

			name := ""
			if ser.Tx.StrRef != nil {
				if pts := ser.Tx.StrRef.points(); len(pts) > 0 {
					name = strings.TrimSpace(pts[0])
				}
			}
			if name == "" {
				name = strings.TrimSpace(ser.Tx.V)
			}
			if name == "" {
				name = fmt.Sprintf("Series %d", len(cd.series)+1)
			}

			var values []float64
			if ser.Val.NumRef != nil {
				for _, raw := range ser.Val.NumRef.points() {
					v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
					if err != nil {
						v = 0
					}
					values = append(values, v)
				}
			}
			if len(cd.categories) == 0 {
				cats := ser.Cat.StrRef.points()
				if len(cats) == 0 {
					cats = ser.Cat.NumRef.points()
				}
				for _, c := range cats {
					cd.categories = append(cd.categories, strings.TrimSpace(c))
				}
			}
			cd.series = append(cd.series, chartSeries{name: name, values: values})
		}
	}
	return cd
}

func chartTitle(cs *chartSpaceXML) string {
	if cs.Chart.Title == nil {
		return ""
	}
	var sb strings.Builder
	for pi, par := range cs.Chart.Title.Tx.Rich.Paragraphs {
		if pi > 0 {
			sb.WriteString(" ")
		}
		for _, r := range par.Runs {
			sb.WriteString(r.T)
		}
	}
	return strings.TrimSpace(sb.String())
}

func (cd *chartData) empty() bool {
	return len(cd.categories) == 0 || len(cd.series) == 0
}

// table lays the chart data out as one row per category with a header row
// of series names. The chart title, when present, captions the first header
// cell.
func (cd *chartData) table() *model.Table {
	head := "Category"
	if cd.title != "" {
		head = fmt.Sprintf("%s (%s)", head, cd.title)
	}
	header := []model.TableCell{chartCell(head)}
	for _, s := range cd.series {
		header = append(header, chartCell(s.name))
	}

	t := &model.Table{HeaderRow: true, Rows: [][]model.TableCell{header}}
	for i, cat := range cd.categories {
		row := []model.TableCell{chartCell(cat)}
		for _, s := range cd.series {
			v := 0.0
			if i < len(s.values) {
				v = s.values[i]
			}
			row = append(row, chartCell(strconv.FormatFloat(v, 'f', -1, 64)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func chartCell(text string) model.TableCell {
	return model.TableCell{
		Blocks: []model.Block{
			&model.Paragraph{Runs: []model.Run{{Text: text}}},
		},
	}
}
