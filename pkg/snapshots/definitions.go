package snapshots

import "github.com/hintlane/clarify-engine/pkg/models"

// Reference query ids consumed by the default-suggestion rules.
const (
	QuerySubsidiaryVolume   = "txn_subsidiary_volume"
	QueryDepartmentLocation = "txn_department_location"
	QueryChartOfAccounts    = "master_chart_of_accounts"
	QueryCurrencies         = "config_currencies"
	QueryStatusDistribution = "txn_status_distribution"
	QueryTypeUsage          = "txn_type_usage"
	QueryRolesPermissions   = "config_roles_permissions"
)

// QueryDefinitions is the curated set of aggregate queries whose cached
// results feed default suggestions. The external batch job runs these and
// writes the results file this service loads.
var QueryDefinitions = []models.ReferenceQueryDefinition{
	{
		QueryID:     "config_active_subsidiaries",
		Section:     "Configuration & Setup",
		Title:       "Get All Active Subsidiaries",
		Description: "Lists all active subsidiaries with currency and status details.",
		SQL: "SELECT id, name, currency, country, state, fiscalcalendar, isinactive, " +
			"iselimination FROM subsidiary WHERE isinactive = 'F' ORDER BY name",
	},
	{
		QueryID:     "config_departments_hierarchy",
		Section:     "Configuration & Setup",
		Title:       "Get Departments with Hierarchy",
		Description: "Retrieves departments and their parent relationships.",
		SQL: "SELECT d.id, d.name, d.parent, p.name AS parent_name, d.isinactive FROM department d " +
			"LEFT JOIN department p ON d.parent = p.id WHERE d.isinactive = 'F' ORDER BY p.name, d.name",
	},
	{
		QueryID:     "config_locations",
		Section:     "Configuration & Setup",
		Title:       "Get All Locations",
		Description: "Returns active locations and their subsidiaries.",
		SQL: "SELECT id, name, subsidiary, isinactive, makeinventoryavailable " +
			"FROM location WHERE isinactive = 'F'",
	},
	{
		QueryID:     "config_business_classifications",
		Section:     "Configuration & Setup",
		Title:       "Get Business Classifications",
		Description: "Lists active business classifications.",
		SQL:         "SELECT id, name, parent, isinactive FROM classification WHERE isinactive = 'F' ORDER BY name",
	},
	{
		QueryID:     "config_accounting_periods",
		Section:     "Configuration & Setup",
		Title:       "Get Accounting Periods",
		Description: "Fetches recent accounting periods with status flags.",
		SQL: "SELECT periodname, startdate, enddate, closed, isAdjust, isQuarter, isYear, " +
			"CASE WHEN startdate <= SYSDATE AND enddate >= SYSDATE THEN 'Y' ELSE 'N' END AS current_period " +
			"FROM AccountingPeriod WHERE startdate >= ADD_MONTHS(SYSDATE, -24) ORDER BY startdate DESC",
	},
	{
		QueryID:     "config_multibook",
		Section:     "Configuration & Setup",
		Title:       "Check Multi-Book Configuration",
		Description: "Summarises accounting book configuration.",
		SQL: "SELECT id, name, isprimary, basebook, currency, effectiveperiod, status, booktype " +
			"FROM AccountingBook ORDER BY isprimary DESC, name",
	},
	{
		QueryID:     QueryCurrencies,
		Section:     "Configuration & Setup",
		Title:       "Get Currency Configuration",
		Description: "Lists active currencies with exchange information.",
		SQL: "SELECT symbol, name, isbasecurrency, exchangerate, currencyprecision FROM currency " +
			"WHERE isinactive = 'F' ORDER BY isbasecurrency DESC, symbol",
	},
	{
		QueryID:     "config_custom_fields",
		Section:     "Configuration & Setup",
		Title:       "Get Custom Fields by Record Type",
		Description: "Retrieves active custom fields and metadata.",
		SQL: "SELECT scriptid, name, fieldtype, recordtype, ismandatory, defaultvalue, description, " +
			"selectrecordtype FROM CustomField WHERE isinactive = 'F' ORDER BY recordtype, name",
	},
	{
		QueryID:     "config_custom_records",
		Section:     "Configuration & Setup",
		Title:       "Get Custom Records Structure",
		Description: "Lists custom record types and capabilities.",
		SQL: "SELECT scriptid, name, recordname, includename, showid, allowattachments, " +
			"allowinlineediting FROM CustomRecordType ORDER BY name",
	},
	{
		QueryID:     QueryRolesPermissions,
		Section:     "Configuration & Setup",
		Title:       "Get All Roles and Permissions",
		Description: "Aggregates active roles and counts active employees per role.",
		SQL: "SELECT r.id, r.name, r.isinactive, COUNT(e.id) AS employee_count FROM role r " +
			"LEFT JOIN employee e ON r.id = e.role AND e.isinactive = 'F' " +
			"WHERE r.isinactive = 'F' GROUP BY r.id, r.name, r.isinactive ORDER BY employee_count DESC",
	},
	{
		QueryID:     "master_customer_distribution",
		Section:     "Master Data",
		Title:       "Customer Categories and Status Distribution",
		Description: "Aggregates active customers by category, status, and terms.",
		SQL: "SELECT category, entitystatus, terms, COUNT(*) AS count " +
			"FROM customer WHERE isinactive = 'F' GROUP BY category, entitystatus, terms",
	},
	{
		QueryID:     "master_vendor_profile",
		Section:     "Master Data",
		Title:       "Vendor Classifications and 1099 Status",
		Description: "Summarises active vendors with 1099 flags and terms.",
		SQL: "SELECT category, is1099eligible, terms, COUNT(*) AS vendor_count " +
			"FROM vendor WHERE isinactive = 'F' " +
			"GROUP BY category, is1099eligible, terms",
	},
	{
		QueryID:     "master_item_distribution",
		Section:     "Master Data",
		Title:       "Item Types and Categories in Use",
		Description: "Counts items by type with serial and lot tracking flags.",
		SQL:         "SELECT itemtype, COUNT(*) AS item_count FROM item WHERE isinactive = 'F' GROUP BY itemtype",
	},
	{
		QueryID:     "master_employee_distribution",
		Section:     "Master Data",
		Title:       "Employee Distribution by Role and Department",
		Description: "Aggregates active employees by department and role.",
		SQL: "SELECT e.department, d.name AS dept_name, e.role, r.name AS role_name, COUNT(*) AS employee_count " +
			"FROM employee e LEFT JOIN department d ON e.department = d.id " +
			"LEFT JOIN role r ON e.role = r.id WHERE e.isinactive = 'F' " +
			"GROUP BY e.department, d.name, e.role, r.name ORDER BY employee_count DESC",
	},
	{
		QueryID:     QueryChartOfAccounts,
		Section:     "Master Data",
		Title:       "Chart of Accounts Structure",
		Description: "Lists accounts with type and hierarchy markers.",
		SQL: "SELECT accttype, id AS acctnumber, fullname AS acctname, " +
			"CASE WHEN parent IS NULL THEN 'Y' ELSE 'N' END AS is_parent, " +
			"includechildren, isinactive FROM account WHERE isinactive = 'F'",
	},
	{
		QueryID:     QueryTypeUsage,
		Section:     "Transaction Analysis",
		Title:       "Transaction Types Actually Used",
		Description: "Counts transactions by type in the last six months.",
		SQL: "SELECT type, COUNT(*) AS usage_count, " +
			"MIN(trandate) AS first_used, MAX(trandate) AS last_used FROM transaction " +
			"WHERE trandate >= ADD_MONTHS(SYSDATE, -6) GROUP BY type",
	},
	{
		QueryID:     QueryStatusDistribution,
		Section:     "Transaction Analysis",
		Title:       "Transaction Status Distribution",
		Description: "Summarises transaction status mix for the last three months.",
		SQL: "SELECT type, status, COUNT(*) AS count FROM transaction " +
			"WHERE trandate >= ADD_MONTHS(SYSDATE, -3) GROUP BY type, status",
	},
	{
		QueryID:     QuerySubsidiaryVolume,
		Section:     "Transaction Analysis",
		Title:       "Subsidiary Transaction Volume",
		Description: "Shows transaction mix and contribution by subsidiary.",
		SQL: "SELECT t.subsidiary, s.name AS subsidiary_name, COUNT(*) AS transaction_count, " +
			"COUNT(DISTINCT t.type) AS transaction_types, COUNT(DISTINCT t.entity) AS unique_entities, " +
			"SUM(t.foreigntotal) AS total_amount, MAX(t.trandate) AS last_activity " +
			"FROM transaction t " +
			"INNER JOIN subsidiary s ON t.subsidiary = s.id WHERE t.trandate >= ADD_MONTHS(SYSDATE, -3) " +
			"GROUP BY t.subsidiary, s.name ORDER BY transaction_count DESC",
	},
	{
		QueryID:     QueryDepartmentLocation,
		Section:     "Transaction Analysis",
		Title:       "Department and Location Usage",
		Description: "Aggregates transactions by department and location over the last quarter.",
		SQL: "SELECT d.name AS department, l.name AS location, COUNT(*) AS transaction_count, " +
			"COUNT(DISTINCT t.entity) AS unique_entities, COUNT(DISTINCT t.createdby) AS unique_users " +
			"FROM transaction t " +
			"LEFT JOIN department d ON t.department = d.id LEFT JOIN location l ON t.location = l.id " +
			"WHERE t.trandate >= ADD_MONTHS(SYSDATE, -3) GROUP BY d.name, l.name HAVING COUNT(*) > 10 " +
			"ORDER BY transaction_count DESC",
	},
	{
		QueryID:     "txn_intercompany_analysis",
		Section:     "Transaction Analysis",
		Title:       "Intercompany Transaction Analysis",
		Description: "Summarises intercompany flows over the last six months.",
		SQL: "SELECT t.subsidiary, t.type, " +
			"COUNT(*) AS transaction_count FROM transaction t " +
			"WHERE t.trandate >= ADD_MONTHS(SYSDATE, -6) " +
			"GROUP BY t.subsidiary, t.type ORDER BY transaction_count DESC",
	},
}
