package catalog

import "github.com/shopspring/decimal"

// DefaultPrice is what every seeded flavor costs until edited.
var DefaultPrice = decimal.NewFromInt(12)

// DefaultFlavors is the menu installed on a fresh database.
var DefaultFlavors = []string{
	"Limón",
	"Mango",
	"Fresa",
	"Fresa mora",
	"Guanábana",
	"Guayaba",
	"Maracuyá",
	"Tuna",
	"Sandía",
	"Melón",
	"Nanche",
	"Tinto",
	"Jugo verde",
	"Mandarina",
	"Pitaya",
	"Pitahaya",
	"Tamarindo",
	"Piña",
	"Acai Asai",
	"Zapote",
	"Gazpacho",
	"Frambuesa",
	"Frutos rojos",
	"Tequila limón",
	"Mezcal higo",
	"Queso",
	"Taro",
	"Mamey",
	"Coco",
	"Pistache",
	"Piñón",
	"Choco Menta",
	"Chocolate (amaranto-cereza envinada)",
	"Vainilla",
	"Oreo",
	"Malvavisco",
	"Cajeta",
	"Fresas con crema",
	"Café",
	"Pay de limón",
	"Matcha",
	"Mouse de Naranja",
	"Arroz con leche",
	"Mazapán",
	"Cereza",
	"Frambuesa yoghurt",
	"Rompope",
}
