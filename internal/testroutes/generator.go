package testroutes

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"
)

// Base position for synthetic routes, a park in Berlin.
const (
	baseLat = 52.5145
	baseLng = 13.3501
)

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371000.0

// shapeIDs the service knows about.
var shapeIDs = []string{"rectangle", "circle", "triangle", "star", "heart"}

// Route is one synthetic submission.
type Route struct {
	SubmissionID string      `json:"submission_id"`
	AthleteID    string      `json:"athlete_id"`
	ActivityID   string      `json:"activity_id"`
	Shape        string      `json:"shape"`
	Coordinates  [][]float64 `json:"coordinates"`
}

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	const divisor = 1000000
	n, _ := rand.Int(rand.Reader, big.NewInt(divisor))
	return float64(n.Int64()) / float64(divisor)
}

func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateRoutes creates routes with unique athlete ids. Roughly a third
// trace their shape cleanly, a third add heavy GPS noise, and a third are
// random scribbles that should score poorly.
func generateRoutes(n int) []Route {
	routes := make([]Route, n)
	for i := range routes {
		athleteID := uuid.New().String()
		shape := shapeIDs[randomInt(len(shapeIDs))]

		var noise float64
		switch i % 3 {
		case 0:
			noise = 2 // meters, near-perfect trace
		case 1:
			noise = 20 // sloppy but recognizable
		default:
			noise = 0 // scribble ignores noise
		}

		var pts [][2]float64
		if i%3 == 2 {
			pts = scribble(300 + randomInt(200))
		} else {
			pts = traceShape(shape, 150+randomInt(100), noise)
		}

		routes[i] = Route{
			SubmissionID: uuid.New().String(),
			AthleteID:    athleteID,
			ActivityID:   fmt.Sprintf("activity-%d", i),
			Shape:        shape,
			Coordinates:  toLatLng(pts),
		}
	}
	return routes
}

// traceShape samples a parametric outline of the named shape at running
// scale, in meters, with gaussian-ish jitter.
func traceShape(shape string, samples int, noise float64) [][2]float64 {
	const size = 200.0 // route extent in meters
	out := make([][2]float64, samples)
	for i := range out {
		t := float64(i) / float64(samples)
		var x, y float64
		switch shape {
		case "circle":
			x = math.Cos(2 * math.Pi * t)
			y = math.Sin(2 * math.Pi * t)
		case "rectangle":
			x, y = rectanglePoint(t, 1.5, 1.0)
		case "triangle":
			x, y = polygonPoint(t, [][2]float64{{0, 1}, {-0.87, -0.5}, {0.87, -0.5}})
		case "star":
			x, y = starPoint(t)
		case "heart":
			// Classic parametric heart, scaled to roughly unit extent.
			a := 2 * math.Pi * t
			x = 16 * math.Pow(math.Sin(a), 3) / 17
			y = (13*math.Cos(a) - 5*math.Cos(2*a) - 2*math.Cos(3*a) - math.Cos(4*a)) / 17
		default:
			x = math.Cos(2 * math.Pi * t)
			y = math.Sin(2 * math.Pi * t)
		}
		jx := (randomFloat()*2 - 1) * noise
		jy := (randomFloat()*2 - 1) * noise
		out[i] = [2]float64{x*size + jx, y*size + jy}
	}
	return out
}

// rectanglePoint walks the perimeter of a w x h rectangle at parameter t.
func rectanglePoint(t, w, h float64) (float64, float64) {
	perim := 2 * (w + h)
	d := t * perim
	switch {
	case d < w:
		return d - w/2, -h / 2
	case d < w+h:
		return w / 2, d - w - h/2
	case d < 2*w+h:
		return w/2 - (d - w - h), h / 2
	default:
		return -w / 2, h/2 - (d - 2*w - h)
	}
}

// polygonPoint walks the closed polygon's perimeter at parameter t.
func polygonPoint(t float64, verts [][2]float64) (float64, float64) {
	var perim float64
	lens := make([]float64, len(verts))
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		lens[i] = math.Hypot(b[0]-a[0], b[1]-a[1])
		perim += lens[i]
	}
	d := t * perim
	for i := range verts {
		if d <= lens[i] || i == len(verts)-1 {
			a, b := verts[i], verts[(i+1)%len(verts)]
			f := d / lens[i]
			return a[0] + f*(b[0]-a[0]), a[1] + f*(b[1]-a[1])
		}
		d -= lens[i]
	}
	return verts[0][0], verts[0][1]
}

// starPoint walks a five-pointed star outline at parameter t.
func starPoint(t float64) (float64, float64) {
	verts := make([][2]float64, 10)
	for i := range verts {
		r := 1.0
		if i%2 == 1 {
			r = 0.4
		}
		a := math.Pi/2 + float64(i)*math.Pi/5
		verts[i] = [2]float64{r * math.Cos(a), r * math.Sin(a)}
	}
	return polygonPoint(t, verts)
}

// scribble produces a random walk that rarely resembles any template.
func scribble(samples int) [][2]float64 {
	out := make([][2]float64, samples)
	x, y := 0.0, 0.0
	for i := range out {
		x += (randomFloat()*2 - 1) * 15
		y += (randomFloat()*2 - 1) * 15
		out[i] = [2]float64{x, y}
	}
	return out
}

// toLatLng converts local meters around the base position to [lat, lng]
// pairs with an inverse equirectangular projection.
func toLatLng(pts [][2]float64) [][]float64 {
	cosLat := math.Cos(baseLat * math.Pi / 180)
	out := make([][]float64, len(pts))
	for i, p := range pts {
		lat := baseLat + p[1]/earthRadius*180/math.Pi
		lng := baseLng + p[0]/(earthRadius*cosLat)*180/math.Pi
		out[i] = []float64{lat, lng}
	}
	return out
}
