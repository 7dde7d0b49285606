package types

// PartID 定义原材料零件的 ID
// 使用字符串类型，方便在日志、配置和持久化快照中直接使用
type PartID string

// StationID 定义生产工站的 ID
type StationID string

const (
	// 自行车产线默认的十个工站
	StationFrameWelded       StationID = "FrameWelded"       // 车架焊接 (入口)：消耗钢管
	StationForkWelded        StationID = "ForkWelded"        // 前叉焊接 (入口)：消耗钢管
	StationFrontForkAssembly StationID = "FrontForkAssembly" // 前叉装配：消耗前两站的产出
	StationPainting          StationID = "Painting"          // 喷漆
	StationPedalAddition     StationID = "PedalAddition"     // 脚踏安装
	StationWheelAddition     StationID = "WheelAddition"     // 车轮安装
	StationChainGear         StationID = "ChainGear"         // 链条变速器
	StationBrakeAddition     StationID = "BrakeAddition"     // 刹车安装
	StationLightAddition     StationID = "LightAddition"     // 车灯安装
	StationSeatInstallation  StationID = "SeatInstallation"  // 车座安装 (出口)
)

// BikeModel 定义成品自行车的型号
type BikeModel string

const (
	ModelSport    BikeModel = "Sport"
	ModelTour     BikeModel = "Tour"
	ModelCommute  BikeModel = "Commute"
	ModelElectric BikeModel = "Electric"
	ModelOffroad  BikeModel = "Offroad"
)

// Role 定义操作者的角色，角色到操作的能力表见 internal/ledger
type Role string

const (
	RoleAdmin            Role = "Admin"
	RoleProductionWorker Role = "ProductionWorker"
	RoleInventoryManager Role = "InventoryManager"
	RoleSales            Role = "Sales"
)

// Actor 表示一次台账操作的发起者
// 边界层 (HTTP API) 完成认证后构造，核心只做能力校验
type Actor struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// OrderStatus 定义订单状态，唯一合法迁移为 Pending -> Completed
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCompleted OrderStatus = "Completed"
)

// Order 表示一条客户订单
// 除 bike_model 和 status 外，其余字段对核心而言是不做校验的透传文本
type Order struct {
	Ref             string      `json:"ref"` // 稳定的订单引用，提交时生成
	CustomerName    string      `json:"customer_name"`
	ContactInfo     string      `json:"contact_info"`
	DeliveryAddress string      `json:"delivery_address"`
	BikeModel       BikeModel   `json:"bike_model"`
	BikeSize        string      `json:"bike_size,omitempty"`
	BikeColor       string      `json:"bike_color,omitempty"`
	WheelSize       string      `json:"wheel_size,omitempty"`
	Gears           string      `json:"gears,omitempty"`
	Brakes          string      `json:"brakes,omitempty"`
	Lights          string      `json:"lights,omitempty"`
	Status          OrderStatus `json:"status"`
	SubmittedAt     string      `json:"submitted_at,omitempty"` // RFC3339 文本，核心不解析
}

// Credentials 是用户目录中的一个条目
type Credentials struct {
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// MaintenanceRecord 维护记录，透传字段，核心只要求字段非空
type MaintenanceRecord struct {
	Station     StationID `json:"station"`
	Timestamp   string    `json:"timestamp"`
	Description string    `json:"description"`
}

// Shift 排班记录
type Shift struct {
	Employee string `json:"employee"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Role     Role   `json:"role"`
}

// ScheduleEntry 生产日程条目
type ScheduleEntry struct {
	Datetime string `json:"datetime"`
	Task     string `json:"task"`
	Notes    string `json:"notes"`
}

// RequirementSpec 描述一条静态需求：resource 可以是零件 ID，也可以是
// 上游工站 ID（装配配方中只允许零件）。绑定类型在台账构造时一次性解析
type RequirementSpec struct {
	Resource string `mapstructure:"resource" json:"resource"`
	Amount   int    `mapstructure:"amount" json:"amount"`
}

// StationSpec 描述一个工站及其需求表
// 使用列表而不是映射，保持需求的声明顺序，同时避开 Viper 将映射 key
// 统一转成小写的行为（零件名如 "Tubular Steel" 必须原样保留）
type StationSpec struct {
	ID       StationID         `mapstructure:"id" json:"id"`
	Requires []RequirementSpec `mapstructure:"requires" json:"requires"`
}

// RecipeSpec 描述一个型号的整车物料清单 (BOM)
type RecipeSpec struct {
	Model BikeModel         `mapstructure:"model" json:"model"`
	Parts []RequirementSpec `mapstructure:"parts" json:"parts"`
}

// StockSpec 描述一种零件的期初库存
type StockSpec struct {
	Part     PartID `mapstructure:"part" json:"part"`
	Quantity int    `mapstructure:"quantity" json:"quantity"`
}

// AlertRule 是一条库存告警规则，rule 为 expr 表达式
type AlertRule struct {
	Name string `mapstructure:"name" json:"name"`
	Rule string `mapstructure:"rule" json:"rule"`
}

// OpCode 标识一种会修改台账的操作，journal 和能力表共用
type OpCode string

const (
	OpAddStock        OpCode = "add_stock"
	OpCompleteStation OpCode = "complete_station"
	OpAssemble        OpCode = "assemble"
	OpSubmitOrder     OpCode = "submit_order"
	OpFulfill         OpCode = "fulfill"
)

// Operation 是操作日志 (journal) 中的一条记录
// 只记录已成功落账的变更，重放时按原顺序重新施加
type Operation struct {
	Op      OpCode    `json:"op"`
	Actor   string    `json:"actor,omitempty"`
	Part    PartID    `json:"part,omitempty"`
	Amount  int       `json:"amount,omitempty"`
	Station StationID `json:"station,omitempty"`
	Model   BikeModel `json:"model,omitempty"`
	Order   *Order    `json:"order,omitempty"`
	Ref     string    `json:"ref,omitempty"`
}
