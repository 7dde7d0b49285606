package config

import (
	"errors"
	"fmt"

	"bike-factory/internal/types"

	"github.com/spf13/viper"
)

// Config 定义应用程序的配置结构
// 使用 mapstructure 标签来映射配置文件中的字段
type Config struct {
	ListenAddr   string              `mapstructure:"listen_addr"`   // HTTP 服务监听地址
	JournalPath  string              `mapstructure:"journal_path"`  // 操作日志文件路径
	SnapshotPath string              `mapstructure:"snapshot_path"` // 全量快照文件路径
	OpeningStock []types.StockSpec   `mapstructure:"opening_stock"` // 期初零件库存
	Stations     []types.StationSpec `mapstructure:"stations"`      // 工站需求表
	Recipes      []types.RecipeSpec  `mapstructure:"recipes"`       // 整车配方目录
	AlertRules   []types.AlertRule   `mapstructure:"alert_rules"`   // 库存告警规则
}

// LoadConfig 从指定目录下的 config.yaml 加载配置
// 配置文件缺失不视为错误：所有业务表都有与出厂产线一致的默认值
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("journal_path", "factory.journal")
	v.SetDefault("snapshot_path", "factory.json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 业务表缺省时回落到出厂默认值
	if len(cfg.OpeningStock) == 0 {
		cfg.OpeningStock = DefaultOpeningStock()
	}
	if len(cfg.Stations) == 0 {
		cfg.Stations = DefaultStations()
	}
	if len(cfg.Recipes) == 0 {
		cfg.Recipes = DefaultRecipes()
	}
	if len(cfg.AlertRules) == 0 {
		cfg.AlertRules = DefaultAlertRules()
	}
	return &cfg, nil
}

// DefaultOpeningStock 返回出厂默认的期初库存
func DefaultOpeningStock() []types.StockSpec {
	return []types.StockSpec{
		{Part: "Tubular Steel", Quantity: 20},
		{Part: "Wheels", Quantity: 20},
		{Part: "Seats", Quantity: 10},
		{Part: "Gears", Quantity: 15},
		{Part: "Brakes", Quantity: 15},
		{Part: "Lights", Quantity: 10},
		{Part: "Motors", Quantity: 5},
		{Part: "Shock Absorbers", Quantity: 5},
	}
}

// DefaultStations 返回出厂默认的十个工站及其需求表
// 默认表恰好构成一条线性链，但引擎只认数值需求，不假设链式顺序
func DefaultStations() []types.StationSpec {
	return []types.StationSpec{
		{ID: types.StationFrameWelded, Requires: []types.RequirementSpec{{Resource: "Tubular Steel", Amount: 2}}},
		{ID: types.StationForkWelded, Requires: []types.RequirementSpec{{Resource: "Tubular Steel", Amount: 1}}},
		{ID: types.StationFrontForkAssembly, Requires: []types.RequirementSpec{
			{Resource: "FrameWelded", Amount: 1}, {Resource: "ForkWelded", Amount: 1}}},
		{ID: types.StationPainting, Requires: []types.RequirementSpec{{Resource: "FrontForkAssembly", Amount: 1}}},
		{ID: types.StationPedalAddition, Requires: []types.RequirementSpec{{Resource: "Painting", Amount: 1}}},
		{ID: types.StationWheelAddition, Requires: []types.RequirementSpec{{Resource: "PedalAddition", Amount: 1}}},
		{ID: types.StationChainGear, Requires: []types.RequirementSpec{{Resource: "WheelAddition", Amount: 1}}},
		{ID: types.StationBrakeAddition, Requires: []types.RequirementSpec{{Resource: "ChainGear", Amount: 1}}},
		{ID: types.StationLightAddition, Requires: []types.RequirementSpec{{Resource: "BrakeAddition", Amount: 1}}},
		{ID: types.StationSeatInstallation, Requires: []types.RequirementSpec{{Resource: "LightAddition", Amount: 1}}},
	}
}

// DefaultRecipes 返回五个默认型号的整车配方
func DefaultRecipes() []types.RecipeSpec {
	return []types.RecipeSpec{
		{Model: types.ModelSport, Parts: []types.RequirementSpec{
			{Resource: "Tubular Steel", Amount: 2}, {Resource: "Wheels", Amount: 2},
			{Resource: "Seats", Amount: 1}, {Resource: "Gears", Amount: 1},
			{Resource: "Brakes", Amount: 1}, {Resource: "Lights", Amount: 1}}},
		{Model: types.ModelTour, Parts: []types.RequirementSpec{
			{Resource: "Tubular Steel", Amount: 3}, {Resource: "Wheels", Amount: 2},
			{Resource: "Seats", Amount: 1}, {Resource: "Gears", Amount: 2},
			{Resource: "Brakes", Amount: 2}, {Resource: "Lights", Amount: 1}}},
		{Model: types.ModelCommute, Parts: []types.RequirementSpec{
			{Resource: "Tubular Steel", Amount: 2}, {Resource: "Wheels", Amount: 2},
			{Resource: "Seats", Amount: 1}, {Resource: "Gears", Amount: 1},
			{Resource: "Brakes", Amount: 1}, {Resource: "Lights", Amount: 1}}},
		{Model: types.ModelElectric, Parts: []types.RequirementSpec{
			{Resource: "Tubular Steel", Amount: 2}, {Resource: "Wheels", Amount: 2},
			{Resource: "Seats", Amount: 1}, {Resource: "Gears", Amount: 1},
			{Resource: "Brakes", Amount: 1}, {Resource: "Lights", Amount: 1},
			{Resource: "Motors", Amount: 1}}},
		{Model: types.ModelOffroad, Parts: []types.RequirementSpec{
			{Resource: "Tubular Steel", Amount: 3}, {Resource: "Wheels", Amount: 2},
			{Resource: "Seats", Amount: 1}, {Resource: "Gears", Amount: 2},
			{Resource: "Brakes", Amount: 2}, {Resource: "Lights", Amount: 1},
			{Resource: "Shock Absorbers", Amount: 2}}},
	}
}

// DefaultAlertRules 返回默认的库存告警规则
func DefaultAlertRules() []types.AlertRule {
	return []types.AlertRule{
		{Name: "low_tubular_steel", Rule: `parts["Tubular Steel"] < 5`},
		{Name: "no_motors_left", Rule: `parts["Motors"] == 0`},
		{Name: "order_backlog", Rule: `pending_orders > 10`},
	}
}
