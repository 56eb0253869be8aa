package ai

// ocrPrompt 股票代码识别提示词，两个提供商共用同一份固定指令
const ocrPrompt = `请仔细分析这张股票行情截图，提取所有可见的股票代码。

要求：
1. 只提取6位数字的股票代码（如：600519、000001、002594、300750）
2. 忽略其他数字（如价格、涨跌幅、成交量等）
3. A股代码规则：
   - 沪市主板：600xxx, 601xxx, 603xxx, 605xxx
   - 深市主板：000xxx, 001xxx
   - 中小板：002xxx
   - 创业板：300xxx, 301xxx
   - 科创板：688xxx, 689xxx
   - 北交所：8xxxxx, 4xxxxx
4. 港股代码：5位数字（如：00700、09988）
5. 美股代码：字母组合（如：AAPL、TSLA）

请按以下 JSON 格式返回结果（只返回JSON，不要其他内容）：
{
    "codes": ["600519", "000001", "002594"],
    "count": 3
}

如果没有识别到任何股票代码，返回：
{
    "codes": [],
    "count": 0
}
`

const (
	// ocrTemperature 低温度确保识别结果稳定
	ocrTemperature = 0.1

	// ocrMaxTokens 识别响应的输出上限，代码列表不需要长文本
	ocrMaxTokens = 1024
)
