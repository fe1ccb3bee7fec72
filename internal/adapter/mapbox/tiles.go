package mapbox

// TileURLTemplate is the Leaflet URL template for classic Mapbox raster tiles.
const TileURLTemplate = "https://api.tiles.mapbox.com/v4/{id}/{z}/{x}/{y}.png?access_token={accessToken}"

// Attribution credits the map data and imagery providers.
const Attribution = `Map data &copy; <a href="https://www.openstreetmap.org/">OpenStreetMap</a> contributors, ` +
	`<a href="https://creativecommons.org/licenses/by-sa/2.0/">CC-BY-SA</a>, ` +
	`Imagery © <a href="https://www.mapbox.com/">Mapbox</a>`

const maxZoom = 18

// Base layer names as shown in the layer control.
const (
	LayerLight     = "Light"
	LayerDark      = "Dark"
	LayerSatellite = "Satellite"
)

// TileLayer describes one base map for a Leaflet tileLayer call.
type TileLayer struct {
	Name        string `json:"name"`
	URLTemplate string `json:"url"`
	ID          string `json:"id"`
	AccessToken string `json:"accessToken"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom"`
}

// TileLayers returns the Light, Dark and Satellite base maps, in that order.
func TileLayers(token string) []TileLayer {
	styles := []struct{ name, id string }{
		{LayerLight, "mapbox.light"},
		{LayerDark, "mapbox.dark"},
		{LayerSatellite, "mapbox.satellite"},
	}

	layers := make([]TileLayer, len(styles))
	for i, s := range styles {
		layers[i] = TileLayer{
			Name:        s.name,
			URLTemplate: TileURLTemplate,
			ID:          s.id,
			AccessToken: token,
			Attribution: Attribution,
			MaxZoom:     maxZoom,
		}
	}
	return layers
}
