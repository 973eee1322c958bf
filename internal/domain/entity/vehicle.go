package entity

// EmergencyPriority — максимальный приоритет. Им помечаются машины экстренных
// служб: они всегда проезжают первыми, независимо от остальных правил.
const EmergencyPriority = 10

// VehicleType описывает тип участника движения из каталога.
// Каталог статичен: загружается один раз при старте процесса и не меняется.
type VehicleType struct {
	ID       string `json:"id"`
	Name     string `json:"name"` // Отображаемое имя (норвежский, как в UI)
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Size     string `json:"size"`     // small, medium, large
	Priority int    `json:"priority"` // Чем выше, тем сильнее право проезда
}

// IsEmergency возвращает true для машин экстренных служб
func (v VehicleType) IsEmergency() bool {
	return v.Priority >= EmergencyPriority
}

// DefaultVehicleCatalog возвращает встроенный каталог участников движения.
// Приоритеты соответствуют норвежским правилам дорожного движения:
// мягкие участники (пешеходы, велосипедисты) выше обычного транспорта,
// общественный транспорт выше личного, экстренные службы выше всех.
func DefaultVehicleCatalog() []VehicleType {
	return []VehicleType{
		{ID: "bil", Name: "Bil", Icon: "car", Color: "#4A90D9", Size: "medium", Priority: 1},
		{ID: "motorsykkel", Name: "Motorsykkel", Icon: "motorcycle", Color: "#7B8794", Size: "small", Priority: 1},
		{ID: "lastebil", Name: "Lastebil", Icon: "truck", Color: "#8D6E63", Size: "large", Priority: 1},
		{ID: "buss", Name: "Buss", Icon: "bus", Color: "#F5A623", Size: "large", Priority: 2},
		{ID: "trikk", Name: "Trikk", Icon: "tram", Color: "#0277BD", Size: "large", Priority: 2},
		{ID: "syklist", Name: "Syklist", Icon: "bicycle", Color: "#43A047", Size: "small", Priority: 3},
		{ID: "fotgjenger", Name: "Fotgjenger", Icon: "walking", Color: "#9C27B0", Size: "small", Priority: 3},
		{ID: "skolebarn", Name: "Skolebarn", Icon: "child", Color: "#E91E63", Size: "small", Priority: 4},
		{ID: "rullestolbruker", Name: "Rullestolbruker", Icon: "wheelchair", Color: "#5E35B1", Size: "small", Priority: 4},
		{ID: "ambulanse", Name: "Ambulanse", Icon: "ambulance", Color: "#D0021B", Size: "large", Priority: EmergencyPriority},
		{ID: "brannbil", Name: "Brannbil", Icon: "fire-truck", Color: "#C62828", Size: "large", Priority: EmergencyPriority},
		{ID: "politibil", Name: "Politibil", Icon: "police-car", Color: "#1565C0", Size: "medium", Priority: EmergencyPriority},
	}
}

// VehicleCatalogByID строит индекс каталога по идентификатору типа
func VehicleCatalogByID(catalog []VehicleType) map[string]VehicleType {
	index := make(map[string]VehicleType, len(catalog))
	for _, v := range catalog {
		index[v.ID] = v
	}
	return index
}
