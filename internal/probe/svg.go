package probe

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// svgSize reads width and height from the root <svg> element, falling back to
// the viewBox when either is missing or relative.
func svgSize(r io.Reader) (Dimensions, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return Dimensions{}, ErrUnknownFormat
		}
		if err != nil {
			return Dimensions{}, fmt.Errorf("probe: svg: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return Dimensions{}, ErrUnknownFormat
		}
		return svgRootSize(start)
	}
}

func svgRootSize(el xml.StartElement) (Dimensions, error) {
	var width, height, viewBox string
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		case "viewBox":
			viewBox = a.Value
		}
	}

	w, wok := svgLength(width)
	h, hok := svgLength(height)
	if wok && hok {
		return Dimensions{Width: w, Height: h}, nil
	}

	vw, vh, ok := parseViewBox(viewBox)
	if !ok {
		return Dimensions{}, errors.New("probe: svg has no usable size")
	}
	switch {
	case wok:
		h = int(math.Round(float64(w) * vh / vw))
	case hok:
		w = int(math.Round(float64(h) * vw / vh))
	default:
		w, h = int(math.Round(vw)), int(math.Round(vh))
	}
	if w <= 0 || h <= 0 {
		return Dimensions{}, errors.New("probe: svg has no usable size")
	}
	return Dimensions{Width: w, Height: h}, nil
}

// svgLength accepts unitless and px lengths. Percentages and other units are
// treated as absent.
func svgLength(v string) (int, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func parseViewBox(v string) (float64, float64, bool) {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, err1 := strconv.ParseFloat(fields[2], 64)
	h, err2 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
