package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type RoleController struct {
	DB *gorm.DB
}

func NewRoleController(db *gorm.DB) *RoleController {
	return &RoleController{DB: db}
}

func (rc *RoleController) GetAllRoles(c *gin.Context) {
	var roles []models.Role
	if err := rc.DB.Order("name").Find(&roles).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of roles", roles)
}

func (rc *RoleController) CreateRole(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := models.Role{
		Name:        req.Name,
		Permissions: models.PermissionList(req.Permissions),
	}
	if err := rc.DB.Create(&role).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	writeAudit(rc.DB, c, "role.create", "role", role.Name, nil, role)
	utils.RespondJSON(c, http.StatusCreated, "Role created", role)
}

func (rc *RoleController) UpdateRole(c *gin.Context) {
	name := c.Param("role_name")

	var req struct {
		Permissions []string `json:"permissions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var role models.Role
	if err := rc.DB.Where("name = ?", name).First(&role).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	before := role
	role.Permissions = models.PermissionList(req.Permissions)
	if err := rc.DB.Save(&role).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	writeAudit(rc.DB, c, "role.update", "role", role.Name, before, role)
	utils.RespondJSON(c, http.StatusOK, "Role updated", role)
}
